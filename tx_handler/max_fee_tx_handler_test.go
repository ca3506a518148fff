package tx_handler

import (
	"testing"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFee(t *testing.T) {
	alice, bob := createTestKey(t), createTestKey(t)
	pool, utxos := createTestPool(t, model.NewOutputTx(coins(10), alice.PublicKey()))
	h := NewMaxFeeTxHandler(utils.Ed25519Scheme{}, DefaultExactSelectionLimit)

	tx := createSignedTx(t, alice, utxos, model.NewOutputTx(coins(9), bob.PublicKey()))
	require.True(t, h.IsValidTx(pool, tx))
	fee, ok := h.Fee(pool, tx)
	require.True(t, ok)
	assert.Equal(t, btcutil.Amount(btcutil.SatoshiPerBitcoin), fee)

	_, ok = h.Fee(model.NewUtxoPool(), tx)
	assert.False(t, ok)

	genesis, err := model.NewTxBuilder().AddGenesisInput().AddOutput(1, bob.PublicKey()).Build()
	require.NoError(t, err)
	_, ok = h.Fee(pool, genesis)
	assert.False(t, ok)
}

// createConflictBatch returns a pool and four transactions:
// tx1 spends u1 with fee 1, tx2 spends u1 and u2 with fee 3, tx3 spends u2 with fee 2.5, and
// tx4 spends u3 with no fee. The best subset is tx1, tx3 and tx4.
func createConflictBatch(t *testing.T) (*model.UtxoPool, []*model.Tx) {
	alice, bob := createTestKey(t), createTestKey(t)
	pool, u := createTestPool(t,
		model.NewOutputTx(coins(10), alice.PublicKey()),
		model.NewOutputTx(coins(10), alice.PublicKey()),
		model.NewOutputTx(coins(10), alice.PublicKey()))

	tx1 := createSignedTx(t, alice, u[0:1], model.NewOutputTx(coins(9), bob.PublicKey()))
	tx2 := createSignedTx(t, alice, u[0:2], model.NewOutputTx(coins(17), bob.PublicKey()))
	tx3 := createSignedTx(t, alice, u[1:2], model.NewOutputTx(coins(7.5), bob.PublicKey()))
	tx4 := createSignedTx(t, alice, u[2:3], model.NewOutputTx(coins(10), bob.PublicKey()))
	return pool, []*model.Tx{tx1, tx2, tx3, tx4}
}

func TestMaxFeeHandleTxsExact(t *testing.T) {
	pool, txs := createConflictBatch(t)
	_, m := createTestHandler(t)
	h := NewMaxFeeTxHandler(utils.Ed25519Scheme{}, DefaultExactSelectionLimit, WithMetrics(m))

	accepted := h.HandleTxs(pool, txs)
	// By descending fee.
	assert.Equal(t, []*model.Tx{txs[2], txs[0], txs[3]}, accepted)

	expected := []model.Utxo{
		model.NewUtxo(txs[0].Hash(), 0),
		model.NewUtxo(txs[2].Hash(), 0),
		model.NewUtxo(txs[3].Hash(), 0),
	}
	assert.ElementsMatch(t, expected, pool.AllUtxos())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.accepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues(reasonBatchConflict)))
}

func TestMaxFeeHandleTxsSingle(t *testing.T) {
	alice, bob := createTestKey(t), createTestKey(t)
	pool, utxos := createTestPool(t, model.NewOutputTx(coins(10), alice.PublicKey()))
	h := NewMaxFeeTxHandler(utils.Ed25519Scheme{}, DefaultExactSelectionLimit)
	tx := createSignedTx(t, alice, utxos, model.NewOutputTx(coins(9), bob.PublicKey()))

	var accepted []*model.Tx
	require.NotPanics(t, func() { accepted = h.HandleTxs(pool, []*model.Tx{tx}) })
	assert.Equal(t, []*model.Tx{tx}, accepted)
	assert.False(t, pool.Contains(utxos[0]))
	assert.True(t, pool.Contains(model.NewUtxo(tx.Hash(), 0)))
}

func TestMaxFeeHandleTxsGreedyAboveLimit(t *testing.T) {
	pool, txs := createConflictBatch(t)
	h := NewMaxFeeTxHandler(utils.Ed25519Scheme{}, 0)

	accepted := h.HandleTxs(pool, txs)
	assert.Equal(t, []*model.Tx{txs[1], txs[3]}, accepted)
	assert.ElementsMatch(t,
		[]model.Utxo{model.NewUtxo(txs[1].Hash(), 0), model.NewUtxo(txs[3].Hash(), 0)},
		pool.AllUtxos())
}

func TestFirstComeHandlerOnConflictBatch(t *testing.T) {
	pool, txs := createConflictBatch(t)
	h := NewTxHandler(utils.Ed25519Scheme{})

	// tx2 loses u1 to tx1, which leaves u2 to tx3.
	assert.Equal(t, []*model.Tx{txs[0], txs[2], txs[3]}, h.HandleTxs(pool, txs))
}

func TestMaxFeeHandleTxsSkipsInvalid(t *testing.T) {
	alice, bob := createTestKey(t), createTestKey(t)
	pool, utxos := createTestPool(t, model.NewOutputTx(coins(10), alice.PublicKey()))
	h := NewMaxFeeTxHandler(utils.Ed25519Scheme{}, DefaultExactSelectionLimit)

	// Pays the highest fee but is signed by the wrong key.
	forged := createSignedTx(t, bob, utxos, model.NewOutputTx(coins(1), bob.PublicKey()))
	honest := createSignedTx(t, alice, utxos, model.NewOutputTx(coins(9), bob.PublicKey()))

	assert.Equal(t, []*model.Tx{honest}, h.HandleTxs(pool, []*model.Tx{forged, honest}))
	assert.Empty(t, h.HandleTxs(pool, []*model.Tx{forged, honest}))
}

func TestMaxFeeHandlerIsAHandler(t *testing.T) {
	var _ Handler = NewTxHandler(utils.Ed25519Scheme{})
	var _ Handler = NewMaxFeeTxHandler(utils.Ed25519Scheme{}, 1)
}
