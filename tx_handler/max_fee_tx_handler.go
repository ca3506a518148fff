package tx_handler

import (
	"time"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/Workiva/go-datastructures/queue"
	"github.com/btcsuite/btcd/btcutil"
)

// DefaultExactSelectionLimit is the largest conflict group solved exactly by default.
const DefaultExactSelectionLimit = 20

// MaxFeeTxHandler accepts, out of every batch, the mutually valid subset paying the largest total
// fee, where the fee of a transaction is its input value minus its output value.
type MaxFeeTxHandler struct {
	*TxHandler
	exactLimit int
}

// NewMaxFeeTxHandler creates a fee maximizing handler. Groups of more than exactLimit conflicting
// transactions are solved greedily by fee.
func NewMaxFeeTxHandler(verifier model.Verifier, exactLimit int, opts ...Option) *MaxFeeTxHandler {
	if exactLimit < 0 {
		exactLimit = 0
	}
	return &MaxFeeTxHandler{
		TxHandler:  NewTxHandler(verifier, opts...),
		exactLimit: exactLimit,
	}
}

// Fee returns the input value of tx minus its output value against pool. It is false when an
// input is a genesis input, claims a utxo missing from pool, or a sum overflows.
func (h *MaxFeeTxHandler) Fee(pool *model.UtxoPool, tx *model.Tx) (btcutil.Amount, bool) {
	in, ok := sumInputs(pool, tx.Inputs())
	if !ok {
		return 0, false
	}
	out, ok := model.SumOutputs(tx.Outputs())
	if !ok {
		return 0, false
	}
	return model.SubAmounts(in, out)
}

// HandleTxs validates every proposed transaction against the pool, applies the conflict free
// subset of the valid ones with the largest total fee and returns it by descending fee, ties in
// proposal order. Fees are computed before the pool changes.
func (h *MaxFeeTxHandler) HandleTxs(pool *model.UtxoPool, txs []*model.Tx) []*model.Tx {
	start := time.Now()
	reasons := h.checkAll(pool, txs)

	var cands []candidate
	for i, tx := range txs {
		if reasons[i] != reasonNone {
			h.reject(tx, reasons[i])
			continue
		}
		fee, ok := h.Fee(pool, tx)
		if !ok {
			// Valid transactions always have a fee.
			h.reject(tx, reasonOverflow)
			continue
		}
		cands = append(cands, candidate{pos: i, tx: tx, fee: fee, utxos: claimedUtxos(tx)})
	}

	chosen := selectMaxFee(cands, h.exactLimit)
	isChosen := make(map[int]bool, len(chosen))
	vtxs := make([]ValidatedTx, 0, len(chosen))
	for _, c := range chosen {
		isChosen[c.pos] = true
		vtxs = append(vtxs, newValidatedTx(c.tx))
	}
	for _, c := range cands {
		if !isChosen[c.pos] {
			h.reject(c.tx, reasonBatchConflict)
		}
	}

	// Order first so the pool is only touched once nothing else can fail.
	res := orderByFee(chosen)
	h.apply(pool, vtxs)
	utils.Logger().Debug().Int("proposed", len(txs)).Int("accepted", len(res)).Msg("Max fee batch handled")
	h.metrics.observeBatch(len(res), time.Since(start))
	return res
}

// feeItem orders candidates in a queue.PriorityQueue, which hands out the lowest item first.
// The queue keys items in a map, so a feeItem must stay comparable.
type feeItem struct {
	pos int
	fee btcutil.Amount
	tx  *model.Tx
}

func (f feeItem) Compare(other queue.Item) int {
	o := other.(feeItem)
	switch {
	case f.fee > o.fee:
		return -1
	case f.fee < o.fee:
		return 1
	case f.pos < o.pos:
		return -1
	case f.pos > o.pos:
		return 1
	}
	return 0
}

func orderByFee(chosen []candidate) []*model.Tx {
	if len(chosen) == 0 {
		return []*model.Tx{}
	}
	pq := queue.NewPriorityQueue(len(chosen), true)
	for _, c := range chosen {
		if err := pq.Put(feeItem{pos: c.pos, fee: c.fee, tx: c.tx}); err != nil {
			panic(err)
		}
	}
	items, err := pq.Get(len(chosen))
	if err != nil {
		panic(err)
	}
	res := make([]*model.Tx, 0, len(items))
	for _, item := range items {
		res = append(res, item.(feeItem).tx)
	}
	return res
}
