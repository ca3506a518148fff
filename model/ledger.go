package model

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/errors"
)

// UtxoPool is the ledger: every currently spendable utxo mapped to the output it represents.
// It is not safe for concurrent use; one writer owns it for the duration of a batch.
type UtxoPool struct {
	utxos map[Utxo]OutputTx
}

func NewUtxoPool() *UtxoPool {
	return &UtxoPool{
		utxos: make(map[Utxo]OutputTx),
	}
}

// AddUtxo maps utxo to out. An existing mapping is never overwritten.
func (p *UtxoPool) AddUtxo(utxo Utxo, out OutputTx) error {
	if _, exist := p.utxos[utxo]; exist {
		return errors.Wrapf(ErrDuplicateUtxo, "utxo %s", utxo)
	}
	p.utxos[utxo] = out
	return nil
}

// RemoveUtxo removes and returns the mapping of utxo, if any.
func (p *UtxoPool) RemoveUtxo(utxo Utxo) (OutputTx, bool) {
	out, ok := p.utxos[utxo]
	if ok {
		delete(p.utxos, utxo)
	}
	return out, ok
}

func (p *UtxoPool) TxOutput(utxo Utxo) (OutputTx, bool) {
	out, ok := p.utxos[utxo]
	return out, ok
}

func (p *UtxoPool) Contains(utxo Utxo) bool {
	_, ok := p.utxos[utxo]
	return ok
}

// AllUtxos returns every utxo in the pool, in no particular order.
func (p *UtxoPool) AllUtxos() []Utxo {
	utxos := make([]Utxo, 0, len(p.utxos))
	for utxo := range p.utxos {
		utxos = append(utxos, utxo)
	}
	return utxos
}

func (p *UtxoPool) Len() int {
	return len(p.utxos)
}

// Clone returns an independent copy of the pool. Outputs are immutable, so they are shared.
func (p *UtxoPool) Clone() *UtxoPool {
	c := &UtxoPool{
		utxos: make(map[Utxo]OutputTx, len(p.utxos)),
	}
	for utxo, out := range p.utxos {
		c.utxos[utxo] = out
	}
	return c
}

// UtxosForAddress returns all utxos owned by address.
func (p *UtxoPool) UtxosForAddress(address Address) map[Utxo]OutputTx {
	owned := make(map[Utxo]OutputTx)
	for utxo, out := range p.utxos {
		if out.address.Equal(address) {
			owned[utxo] = out
		}
	}
	return owned
}

// Balance sums the values owned by address. It fails on overflow.
func (p *UtxoPool) Balance(address Address) (btcutil.Amount, error) {
	var total btcutil.Amount
	for _, out := range p.UtxosForAddress(address) {
		sum, ok := AddAmounts(total, out.value)
		if !ok {
			return 0, errors.Errorf("balance of %s overflows", address)
		}
		total = sum
	}
	return total, nil
}
