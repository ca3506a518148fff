package wallet

import (
	"testing"

	"github.com/Luismorlan/scrooge_in_go/config"
	"github.com/Luismorlan/scrooge_in_go/full_node"
	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Returns a node where the wallet owns two utxos worth 30 and 20.
func GetTestWallet(t *testing.T) (*Wallet, *full_node.FullNode) {
	node, err := full_node.NewFullNode(config.DefaultAppConfig(), nil)
	require.NoError(t, err)
	keys, err := node.Scheme().GenerateKey()
	require.NoError(t, err)

	genesis, err := model.NewTxBuilderWithHasher(node.Hasher()).
		AddGenesisInput().
		AddOutput(30, keys.PublicKey()).
		AddOutput(20, keys.PublicKey()).
		Build()
	require.NoError(t, err)
	require.NoError(t, node.Bootstrap(genesis))
	return NewWallet(keys, node), node
}

func TestGetBalance(t *testing.T) {
	w, _ := GetTestWallet(t)
	balance, err := w.GetBalance()
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(50), balance)
	assert.Len(t, w.UTXOs, 2)
}

func TestCreatePendingTransaction(t *testing.T) {
	w, node := GetTestWallet(t)
	_, err := w.GetBalance()
	require.NoError(t, err)
	receiver, err := utils.Ed25519Scheme{}.GenerateKey()
	require.NoError(t, err)

	tx, err := CreatePendingTransaction(w, []model.OutputTx{model.NewOutputTx(35, receiver.PublicKey())}, 5)
	require.NoError(t, err)

	// Both utxos are needed, 10 comes back as change.
	assert.Equal(t, 2, tx.NumInputs())
	require.Equal(t, 2, tx.NumOutputs())
	assert.Equal(t, btcutil.Amount(35), tx.Output(0).Value())
	assert.Equal(t, btcutil.Amount(10), tx.Output(1).Value())
	assert.True(t, w.Keys.PublicKey().Equal(tx.Output(1).Address()))
	assert.True(t, node.ValidateTransaction(tx))

	for i := 0; i < tx.NumInputs(); i++ {
		in, ok := tx.Input(i).(model.SignedInput)
		require.True(t, ok)
		assert.True(t, node.Scheme().Verify(w.Keys.PublicKey(), in.Utxo().Bytes(), in.Signature()))
	}
}

func TestCreatePendingTransactionSpendsOnlyWhatIsNeeded(t *testing.T) {
	w, _ := GetTestWallet(t)
	_, err := w.GetBalance()
	require.NoError(t, err)

	tx, err := CreatePendingTransaction(w, []model.OutputTx{model.NewOutputTx(5, model.Address("bob"))}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.NumInputs())
	assert.Equal(t, 2, tx.NumOutputs())
}

func TestCreatePendingTransactionInsufficientFunds(t *testing.T) {
	w, _ := GetTestWallet(t)
	_, err := w.GetBalance()
	require.NoError(t, err)

	_, err = CreatePendingTransaction(w, []model.OutputTx{model.NewOutputTx(50, model.Address("bob"))}, 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = CreatePendingTransaction(w, []model.OutputTx{model.NewOutputTx(1, model.Address("bob"))}, -1)
	assert.Error(t, err)
}

func TestTransferMoney(t *testing.T) {
	w, node := GetTestWallet(t)
	receiver, err := node.Scheme().GenerateKey()
	require.NoError(t, err)

	tx, err := w.TransferMoney(receiver.PublicKey(), 45, 1)
	require.NoError(t, err)
	assert.Equal(t, []*model.Tx{tx}, node.PendingTransactions())

	assert.Equal(t, []*model.Tx{tx}, node.ProcessEpoch())
	got, err := node.GetBalance(receiver.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(45), got)

	left, err := w.GetBalance()
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(4), left)
}
