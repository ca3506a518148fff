package tx_handler

import (
	"math"
	"sort"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/btcsuite/btcd/btcutil"
)

// candidate is an individually valid transaction of a batch.
type candidate struct {
	// Position in the proposed batch.
	pos   int
	tx    *model.Tx
	fee   btcutil.Amount
	utxos []model.Utxo
}

// unionFind groups candidate positions. Path halving, union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// conflictComponents splits candidates into groups such that two candidates sharing a claimed
// utxo always land in the same group. Groups and their members keep batch order.
func conflictComponents(cands []candidate) [][]candidate {
	uf := newUnionFind(len(cands))
	firstClaim := make(map[model.Utxo]int)
	for i, c := range cands {
		for _, u := range c.utxos {
			if j, ok := firstClaim[u]; ok {
				uf.union(i, j)
			} else {
				firstClaim[u] = i
			}
		}
	}

	var comps [][]candidate
	compOf := make(map[int]int)
	for i, c := range cands {
		root := uf.find(i)
		k, ok := compOf[root]
		if !ok {
			k = len(comps)
			compOf[root] = k
			comps = append(comps, nil)
		}
		comps[k] = append(comps[k], c)
	}
	return comps
}

// conflicts reports whether a and b claim a common utxo.
func conflicts(a, b candidate) bool {
	for _, u := range a.utxos {
		for _, v := range b.utxos {
			if u == v {
				return true
			}
		}
	}
	return false
}

// saturatingAdd adds two non-negative fees, clamping at the largest amount.
func saturatingAdd(a, b btcutil.Amount) btcutil.Amount {
	if sum, ok := model.AddAmounts(a, b); ok {
		return sum
	}
	return btcutil.Amount(math.MaxInt64)
}

// byFee orders candidates by fee descending, then batch order.
func byFee(comp []candidate) []candidate {
	sorted := make([]candidate, len(comp))
	copy(sorted, comp)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].fee != sorted[j].fee {
			return sorted[i].fee > sorted[j].fee
		}
		return sorted[i].pos < sorted[j].pos
	})
	return sorted
}

// selectGreedy takes candidates by descending fee, skipping those that conflict with one already
// taken.
func selectGreedy(comp []candidate) []candidate {
	var chosen []candidate
	for _, c := range byFee(comp) {
		ok := true
		for _, t := range chosen {
			if conflicts(c, t) {
				ok = false
				break
			}
		}
		if ok {
			chosen = append(chosen, c)
		}
	}
	return chosen
}

// selectExact returns the conflict free subset of comp with the largest total fee. comp must
// have at most 64 members. Among equal totals the first subset met in fee order wins.
func selectExact(comp []candidate) []candidate {
	sorted := byFee(comp)
	n := len(sorted)

	conflictMask := make([]uint64, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if conflicts(sorted[i], sorted[j]) {
				conflictMask[i] |= 1 << uint(j)
				conflictMask[j] |= 1 << uint(i)
			}
		}
	}
	// remaining[i] bounds the fee still reachable from position i on.
	remaining := make([]btcutil.Amount, n+1)
	for i := n - 1; i >= 0; i-- {
		remaining[i] = saturatingAdd(remaining[i+1], sorted[i].fee)
	}

	var bestMask uint64
	bestFee := btcutil.Amount(-1)
	var search func(i int, mask uint64, fee btcutil.Amount)
	search = func(i int, mask uint64, fee btcutil.Amount) {
		if fee > bestFee {
			bestFee, bestMask = fee, mask
		}
		if i == n || saturatingAdd(fee, remaining[i]) <= bestFee {
			return
		}
		if conflictMask[i]&mask == 0 {
			search(i+1, mask|1<<uint(i), saturatingAdd(fee, sorted[i].fee))
		}
		search(i+1, mask, fee)
	}
	search(0, 0, 0)

	// Zero fee candidates that fit are taken too.
	for i := 0; i < n; i++ {
		if bestMask&(1<<uint(i)) == 0 && conflictMask[i]&bestMask == 0 {
			bestMask |= 1 << uint(i)
		}
	}

	var chosen []candidate
	for i := 0; i < n; i++ {
		if bestMask&(1<<uint(i)) != 0 {
			chosen = append(chosen, sorted[i])
		}
	}
	return chosen
}

// selectMaxFee picks, component by component, a conflict free subset of cands maximizing the
// total fee. Components larger than exactLimit are solved greedily. The result is in batch order.
func selectMaxFee(cands []candidate, exactLimit int) []candidate {
	var chosen []candidate
	for _, comp := range conflictComponents(cands) {
		switch {
		case len(comp) == 1:
			chosen = append(chosen, comp[0])
		case len(comp) <= exactLimit && len(comp) <= 64:
			chosen = append(chosen, selectExact(comp)...)
		default:
			chosen = append(chosen, selectGreedy(comp)...)
		}
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].pos < chosen[j].pos })
	return chosen
}
