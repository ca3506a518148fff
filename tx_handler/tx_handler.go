package tx_handler

import (
	"time"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/btcsuite/btcd/btcutil"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Why a transaction was turned down. Empty means accepted.
const (
	reasonNone             = ""
	reasonEmpty            = "empty"
	reasonMissingUtxo      = "missing_utxo"
	reasonBadSignature     = "bad_signature"
	reasonDoubleClaim      = "double_claim"
	reasonNegativeOutput   = "negative_output"
	reasonInsufficientFund = "insufficient_input"
	reasonOverflow         = "overflow"
	reasonBatchConflict    = "batch_conflict"
)

var ErrNotGenesis = errors.New("transaction has a non genesis input")

// Handler is what a node needs from a batch handler.
type Handler interface {
	IsValidTx(pool *model.UtxoPool, tx *model.Tx) bool
	HandleTxs(pool *model.UtxoPool, txs []*model.Tx) []*model.Tx
}

type TxHandler struct {
	verifier model.Verifier
	workers  int
	metrics  *Metrics
}

type Option func(*TxHandler)

// WithWorkers bounds how many transactions are validated concurrently.
func WithWorkers(n int) Option {
	return func(h *TxHandler) {
		if n > 0 {
			h.workers = n
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *TxHandler) {
		h.metrics = m
	}
}

// NewTxHandler creates a handler checking signatures with verifier. The verifier must be safe for
// concurrent use.
func NewTxHandler(verifier model.Verifier, opts ...Option) *TxHandler {
	h := &TxHandler{
		verifier: verifier,
		workers:  1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IsValidTx returns true if tx has inputs and outputs and:
// 1. All utxos claimed by tx are in the pool.
// 2. Every input is signed, and the signature verifies over the claimed utxo bytes with the key
// of the output being spent.
// 3. No utxo is claimed twice by tx.
// 4. All output values are non-negative.
// 5. The sum of input values is greater than or equal to the sum of output values.
// The pool is only read.
func (h *TxHandler) IsValidTx(pool *model.UtxoPool, tx *model.Tx) bool {
	return h.checkTx(pool, tx) == reasonNone
}

func (h *TxHandler) checkTx(pool *model.UtxoPool, tx *model.Tx) string {
	// Only a zero Tx, never a built one, lacks inputs or outputs.
	if tx.NumInputs() == 0 || tx.NumOutputs() == 0 {
		return reasonEmpty
	}
	inputs := tx.Inputs()

	// Existence.
	for _, in := range inputs {
		utxo, ok := model.ClaimedUtxo(in)
		if !ok || !pool.Contains(utxo) {
			return reasonMissingUtxo
		}
	}

	// Authorization.
	for _, in := range inputs {
		// Unsigned inputs are never authorized.
		v, ok := in.(model.SignedInput)
		if !ok {
			return reasonBadSignature
		}
		out, _ := pool.TxOutput(v.Utxo())
		if !h.verifier.Verify(out.Address(), v.Utxo().Bytes(), v.Signature()) {
			return reasonBadSignature
		}
	}

	// No double claim within the transaction.
	claimed := mapset.NewThreadUnsafeSet[model.Utxo]()
	for _, in := range inputs {
		if v, ok := in.(model.SignedInput); ok {
			claimed.Add(v.Utxo())
		}
	}
	if claimed.Cardinality() != len(inputs) {
		return reasonDoubleClaim
	}

	// Non-negative outputs.
	for _, out := range tx.Outputs() {
		if out.Value() < 0 {
			return reasonNegativeOutput
		}
	}

	// Conservation.
	inSum, ok := sumInputs(pool, inputs)
	if !ok {
		return reasonOverflow
	}
	outSum, ok := model.SumOutputs(tx.Outputs())
	if !ok {
		return reasonOverflow
	}
	if inSum < outSum {
		return reasonInsufficientFund
	}
	return reasonNone
}

// sumInputs totals the values of the claimed utxos, false if one is missing, is a genesis
// input, or the sum overflows.
func sumInputs(pool *model.UtxoPool, inputs []model.InputTx) (btcutil.Amount, bool) {
	var total btcutil.Amount
	for _, in := range inputs {
		utxo, ok := model.ClaimedUtxo(in)
		if !ok {
			return 0, false
		}
		out, ok := pool.TxOutput(utxo)
		if !ok {
			return 0, false
		}
		total, ok = model.AddAmounts(total, out.Value())
		if !ok {
			return 0, false
		}
	}
	return total, true
}

// checkAll computes the rejection reason of every candidate against the same, unmodified pool.
// Candidates are independent until application, so they are checked concurrently.
func (h *TxHandler) checkAll(pool *model.UtxoPool, txs []*model.Tx) []string {
	reasons := make([]string, len(txs))
	var g errgroup.Group
	g.SetLimit(h.workers)
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			reasons[i] = h.checkTx(pool, tx)
			return nil
		})
	}
	// Workers never fail.
	_ = g.Wait()
	return reasons
}

// HandleTxs handles one epoch: it checks every proposed transaction against the pool, keeps a
// mutually valid subset, applies it to the pool and returns it in proposal order.
//
// Individually valid transactions that claim a utxo already claimed by an earlier accepted
// transaction of the same batch are rejected, so first come wins. The pool must not be used by
// anyone else until HandleTxs returns.
func (h *TxHandler) HandleTxs(pool *model.UtxoPool, txs []*model.Tx) []*model.Tx {
	start := time.Now()
	reasons := h.checkAll(pool, txs)

	claimed := mapset.NewThreadUnsafeSet[model.Utxo]()
	var accepted []ValidatedTx
	for i, tx := range txs {
		if reasons[i] == reasonNone && !claimAll(claimed, tx) {
			reasons[i] = reasonBatchConflict
		}
		if reasons[i] != reasonNone {
			h.reject(tx, reasons[i])
			continue
		}
		accepted = append(accepted, newValidatedTx(tx))
	}

	res := h.apply(pool, accepted)
	h.metrics.observeBatch(len(res), time.Since(start))
	return res
}

func (h *TxHandler) apply(pool *model.UtxoPool, vtxs []ValidatedTx) []*model.Tx {
	res := make([]*model.Tx, 0, len(vtxs))
	for _, vtx := range vtxs {
		applyValidatedTx(pool, vtx)
		utils.Logger().Debug().Str("txHash", vtx.Tx().Hash().String()).Msg("Transaction accepted")
		res = append(res, vtx.Tx())
	}
	h.metrics.accept(len(res))
	return res
}

func (h *TxHandler) reject(tx *model.Tx, reason string) {
	utils.Logger().Debug().
		Str("txHash", tx.Hash().String()).
		Str("reason", reason).
		Msg("Transaction rejected")
	h.metrics.reject(reason)
}

// claimAll adds every utxo claimed by tx to claimed, unless one of them is already there, in
// which case claimed is left unchanged.
func claimAll(claimed mapset.Set[model.Utxo], tx *model.Tx) bool {
	utxos := claimedUtxos(tx)
	for _, u := range utxos {
		if claimed.Contains(u) {
			return false
		}
	}
	claimed.Append(utxos...)
	return true
}

func claimedUtxos(tx *model.Tx) []model.Utxo {
	utxos := make([]model.Utxo, 0, tx.NumInputs())
	for i := 0; i < tx.NumInputs(); i++ {
		if u, ok := model.ClaimedUtxo(tx.Input(i)); ok {
			utxos = append(utxos, u)
		}
	}
	return utxos
}

// ApplyGenesis bootstraps pool with the outputs of a transaction made only of genesis inputs.
// Nothing is added if one of the outputs already exists.
func ApplyGenesis(pool *model.UtxoPool, tx *model.Tx) error {
	if !tx.IsGenesis() {
		return errors.Wrapf(ErrNotGenesis, "tx %s", tx.Hash())
	}
	for i := 0; i < tx.NumOutputs(); i++ {
		idx, err := model.NewTxIndex(i)
		if err != nil {
			return err
		}
		if pool.Contains(model.NewUtxo(tx.Hash(), idx)) {
			return errors.Wrapf(model.ErrDuplicateUtxo, "genesis tx %s output %d", tx.Hash(), i)
		}
	}
	return addOutputs(pool, tx)
}
