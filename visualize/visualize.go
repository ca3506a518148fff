package visualize

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/bradleyjkemp/memviz"
	"github.com/pkg/errors"
)

// We re-define the visualize model here because the ledger types keep their fields private and
// carry raw bytes that don't render well.
type input struct {
	prevTxHash string
	index      uint64
	signed     bool
}

type output struct {
	value   string
	address string
}

type transaction struct {
	hash    string
	inputs  []input
	outputs []output
}

type utxo struct {
	txHash string
	index  uint64
	output output
}

type ledger struct {
	node     string
	epoch    int64
	utxos    []utxo
	accepted []transaction
}

// The string of public key and hash is just too long to render, instead we take only first 3 and last 3
// characters and replace the middle part with '...'. E.g. "abcdefghi" will be rendered as "abc...ghi"
func shortenString(s string) string {
	if len(s) < 9 {
		return s
	}
	return fmt.Sprintf("%s...%s", s[0:3], s[len(s)-3:])
}

func outToOut(out model.OutputTx) output {
	return output{
		value:   utils.FormatAmount(out.Value()),
		address: shortenString(out.Address().String()),
	}
}

func txToTx(tx *model.Tx) transaction {
	t := transaction{
		hash: shortenString(tx.Hash().String()),
	}
	for i := 0; i < tx.NumInputs(); i++ {
		in := tx.Input(i)
		u, ok := model.ClaimedUtxo(in)
		if !ok {
			t.inputs = append(t.inputs, input{prevTxHash: "genesis"})
			continue
		}
		_, signed := in.(model.SignedInput)
		t.inputs = append(t.inputs, input{
			prevTxHash: shortenString(u.TxHash().String()),
			index:      uint64(u.Index()),
			signed:     signed,
		})
	}
	for i := 0; i < tx.NumOutputs(); i++ {
		t.outputs = append(t.outputs, outToOut(tx.Output(i)))
	}
	return t
}

func constructData(pool *model.UtxoPool, accepted []*model.Tx, id string, epoch int64) ledger {
	l := ledger{node: id, epoch: epoch}
	utxos := pool.AllUtxos()
	sort.Slice(utxos, func(i, j int) bool { return utxos[i].Compare(utxos[j]) < 0 })
	for _, u := range utxos {
		out, _ := pool.TxOutput(u)
		l.utxos = append(l.utxos, utxo{
			txHash: shortenString(u.TxHash().String()),
			index:  uint64(u.Index()),
			output: outToOut(out),
		})
	}
	for _, tx := range accepted {
		l.accepted = append(l.accepted, txToTx(tx))
	}
	return l
}

// Render writes the pool and the transactions accepted into it as a graphviz dot graph.
func Render(w io.Writer, pool *model.UtxoPool, accepted []*model.Tx, id string, epoch int64) {
	data := constructData(pool, accepted, id, epoch)
	memviz.Map(w, &data)
}

// RenderToFile writes the dot graph to path. When graphviz is installed a png is rendered next
// to it.
func RenderToFile(path string, pool *model.UtxoPool, accepted []*model.Tx, id string, epoch int64) error {
	buf := &bytes.Buffer{}
	Render(buf, pool, accepted, id, epoch)

	// Write the parsed data to disk
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	dot, err := exec.LookPath("dot")
	if err != nil {
		utils.Logger().Debug().Msg("graphviz not found, skipping png")
		return nil
	}
	outputName := strings.TrimSuffix(path, ".dot") + ".png"
	if out, err := exec.Command(dot, "-Tpng", path, "-o", outputName).CombinedOutput(); err != nil {
		return errors.Wrapf(err, "dot failed: %s", out)
	}
	utils.Logger().Info().Str("path", outputName).Msg("Rendered ledger")
	return nil
}
