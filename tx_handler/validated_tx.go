package tx_handler

import (
	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/pkg/errors"
)

// ValidatedTx marks a transaction that passed validation against the pool it is about to be
// applied to. Only this package can create one, and only the pool mutation helpers below
// consume it.
type ValidatedTx struct {
	tx *model.Tx
}

func newValidatedTx(tx *model.Tx) ValidatedTx {
	return ValidatedTx{tx: tx}
}

func (v ValidatedTx) Tx() *model.Tx {
	return v.tx
}

// removeValidatedInputs claims every input of vtx. A missing utxo means validation and
// application disagree, which is a bug, not a user error.
func removeValidatedInputs(pool *model.UtxoPool, vtx ValidatedTx) {
	for i := 0; i < vtx.tx.NumInputs(); i++ {
		utxo, ok := model.ClaimedUtxo(vtx.tx.Input(i))
		if !ok {
			panic(errors.Errorf("validated tx %s has a genesis input", vtx.tx.Hash()))
		}
		if _, ok := pool.RemoveUtxo(utxo); !ok {
			panic(errors.Wrapf(model.ErrUtxoNotFound, "validated tx %s claims %s", vtx.tx.Hash(), utxo))
		}
	}
}

// addValidatedOutputs stores every output of vtx under (hash, index).
func addValidatedOutputs(pool *model.UtxoPool, vtx ValidatedTx) {
	if err := addOutputs(pool, vtx.tx); err != nil {
		panic(errors.Wrapf(err, "validated tx %s", vtx.tx.Hash()))
	}
}

func addOutputs(pool *model.UtxoPool, tx *model.Tx) error {
	for i := 0; i < tx.NumOutputs(); i++ {
		idx, err := model.NewTxIndex(i)
		if err != nil {
			return err
		}
		if err := pool.AddUtxo(model.NewUtxo(tx.Hash(), idx), tx.Output(i)); err != nil {
			return err
		}
	}
	return nil
}

func applyValidatedTx(pool *model.UtxoPool, vtx ValidatedTx) {
	removeValidatedInputs(pool, vtx)
	addValidatedOutputs(pool, vtx)
}
