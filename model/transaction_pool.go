package model

import "github.com/pkg/errors"

type TransactionPool struct {
	// TransactionPool contains all pending transactions that haven't been handled in an epoch.
	// Key is the transaction's hash, value is the transaction.
	TxPool map[TxHash]*Tx
	// Arrival order, so that a batch is always proposed in the order it was received.
	order []TxHash
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() *TransactionPool {
	return &TransactionPool{
		TxPool: make(map[TxHash]*Tx),
	}
}

func (p *TransactionPool) Add(tx *Tx) error {
	if _, exist := p.TxPool[tx.Hash()]; exist {
		return errors.Wrapf(ErrDuplicateTransaction, "tx %s", tx.Hash())
	}
	p.TxPool[tx.Hash()] = tx
	p.order = append(p.order, tx.Hash())
	return nil
}

func (p *TransactionPool) Len() int {
	return len(p.TxPool)
}

// GetAllTxs returns the pending transactions in arrival order.
func (p *TransactionPool) GetAllTxs() []*Tx {
	txs := make([]*Tx, 0, len(p.order))
	for _, h := range p.order {
		txs = append(txs, p.TxPool[h])
	}
	return txs
}

// Drain returns all pending transactions in arrival order and empties the pool.
func (p *TransactionPool) Drain() []*Tx {
	txs := p.GetAllTxs()
	p.TxPool = make(map[TxHash]*Tx)
	p.order = nil
	return txs
}
