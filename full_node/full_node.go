package full_node

import (
	"sync"

	"github.com/Luismorlan/scrooge_in_go/config"
	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/tx_handler"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	uuid "github.com/satori/go.uuid"
)

// A full node owns the authoritative utxo pool and advances it one epoch at a time.
type FullNode struct {
	// The utxo pool it needs to maintain. Never mutated in place, replaced at the end of an epoch.
	pool *model.UtxoPool
	// Transaction pool it need to maintain. Incoming transaction are added to this pool.
	txPool *model.TransactionPool
	// Transactions accepted by the last epoch, in the order the handler returned them.
	lastAccepted []*model.Tx
	// Number of epochs processed so far.
	epoch int64

	handler tx_handler.Handler
	scheme  utils.Scheme
	hasher  model.Hasher
	config  config.AppConfig

	// A single mutex for changing internal state.
	m sync.RWMutex
	// Serializes epochs and bootstraps, which run the handler outside of m.
	epochMu sync.Mutex
	// A unique indentifier of this Fullnode, only used in logs and renders.
	uuid string
}

// NewFullNode creates a node with an empty pool. Handler metrics are registered with reg unless
// it is nil.
func NewFullNode(c config.AppConfig, reg prometheus.Registerer) (*FullNode, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	scheme, err := utils.SchemeByName(c.SIGNATURE_SCHEME, c.RSA_KEY_BITS)
	if err != nil {
		return nil, err
	}
	hasher, err := utils.HasherByName(c.HASH_ALGORITHM)
	if err != nil {
		return nil, err
	}

	opts := []tx_handler.Option{tx_handler.WithWorkers(c.VALIDATION_WORKERS)}
	if reg != nil {
		m, err := tx_handler.NewMetrics(reg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to register handler metrics")
		}
		opts = append(opts, tx_handler.WithMetrics(m))
	}
	var handler tx_handler.Handler
	if c.MAX_FEE {
		handler = tx_handler.NewMaxFeeTxHandler(scheme, c.EXACT_SELECTION_LIMIT, opts...)
	} else {
		handler = tx_handler.NewTxHandler(scheme, opts...)
	}

	return &FullNode{
		pool:    model.NewUtxoPool(),
		txPool:  model.NewTransactionPool(),
		handler: handler,
		scheme:  scheme,
		hasher:  hasher,
		config:  c,
		uuid:    uuid.NewV4().String(),
	}, nil
}

func (f *FullNode) Id() string {
	return f.uuid
}

// Scheme verifying and producing the signatures of this ledger.
func (f *FullNode) Scheme() utils.Scheme {
	return f.scheme
}

// Hasher deriving transaction hashes of this ledger.
func (f *FullNode) Hasher() model.Hasher {
	return f.hasher
}

func (f *FullNode) Epoch() int64 {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.epoch
}

// Bootstrap credits the outputs of a genesis transaction. Either all outputs are added or none.
func (f *FullNode) Bootstrap(genesis *model.Tx) error {
	f.epochMu.Lock()
	defer f.epochMu.Unlock()

	next := f.GetPoolSnapshot()
	if err := tx_handler.ApplyGenesis(next, genesis); err != nil {
		return err
	}

	f.m.Lock()
	f.pool = next
	f.m.Unlock()
	utils.Logger().Info().
		Str("node", f.uuid).
		Str("txHash", genesis.Hash().String()).
		Int("outputs", genesis.NumOutputs()).
		Msg("Genesis applied")
	return nil
}

// AddTransactionToPool queues tx for the next epoch.
func (f *FullNode) AddTransactionToPool(tx *model.Tx) error {
	f.m.Lock()
	defer f.m.Unlock()
	return f.txPool.Add(tx)
}

// ValidateTransaction checks tx against the current pool without queueing it.
func (f *FullNode) ValidateTransaction(tx *model.Tx) bool {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.handler.IsValidTx(f.pool, tx)
}

func (f *FullNode) PendingTransactions() []*model.Tx {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.txPool.GetAllTxs()
}

// Return a deep copy of the current pool.
func (f *FullNode) GetPoolSnapshot() *model.UtxoPool {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.pool.Clone()
}

func (f *FullNode) GetUtxoForPublicKey(address model.Address) map[model.Utxo]model.OutputTx {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.pool.UtxosForAddress(address)
}

func (f *FullNode) GetBalance(address model.Address) (btcutil.Amount, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.pool.Balance(address)
}

// LastAccepted returns the transactions accepted by the last epoch.
func (f *FullNode) LastAccepted() []*model.Tx {
	f.m.RLock()
	defer f.m.RUnlock()
	res := make([]*model.Tx, len(f.lastAccepted))
	copy(res, f.lastAccepted)
	return res
}

// ProcessEpoch drains the pending transactions and hands them to the handler as one batch. The
// handler works on a copy of the pool which replaces the current one when it is done, so readers
// only ever see the pool before or after the whole batch.
func (f *FullNode) ProcessEpoch() []*model.Tx {
	f.epochMu.Lock()
	defer f.epochMu.Unlock()

	f.m.Lock()
	txs := f.txPool.Drain()
	next := f.pool.Clone()
	f.m.Unlock()

	accepted := f.handler.HandleTxs(next, txs)

	f.m.Lock()
	f.pool = next
	f.lastAccepted = accepted
	f.epoch++
	epoch := f.epoch
	f.m.Unlock()

	utils.Logger().Info().
		Str("node", f.uuid).
		Int64("epoch", epoch).
		Int("proposed", len(txs)).
		Int("accepted", len(accepted)).
		Int("utxos", next.Len()).
		Msg("Epoch processed")
	return accepted
}
