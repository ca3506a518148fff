package wallet

import (
	"sort"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/errors"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Node is the part of a full node a wallet talks to.
type Node interface {
	GetUtxoForPublicKey(address model.Address) map[model.Utxo]model.OutputTx
	AddTransactionToPool(tx *model.Tx) error
	Hasher() model.Hasher
}

// User signs and sends transactions to a node.
type Wallet struct {
	Keys  utils.KeyPair
	Node  Node
	UTXOs map[model.Utxo]model.OutputTx
}

func NewWallet(keys utils.KeyPair, node Node) *Wallet {
	return &Wallet{
		Keys:  keys,
		Node:  node,
		UTXOs: make(map[model.Utxo]model.OutputTx),
	}
}

// GetBalance refreshes the wallet utxos from the node and returns their total.
func (w *Wallet) GetBalance() (btcutil.Amount, error) {
	w.UTXOs = w.Node.GetUtxoForPublicKey(w.Keys.PublicKey())
	var total btcutil.Amount
	for _, out := range w.UTXOs {
		var ok bool
		total, ok = model.AddAmounts(total, out.Value())
		if !ok {
			return 0, errors.New("balance overflows")
		}
	}
	return total, nil
}

// TransferMoney pays value to receiver, leaving fee to whoever handles the epoch, and queues the
// transaction on the node.
func (w *Wallet) TransferMoney(receiver model.Address, value, fee btcutil.Amount) (*model.Tx, error) {
	if _, err := w.GetBalance(); err != nil {
		return nil, errors.Wrap(err, "failed to get balance from full node")
	}
	tx, err := CreatePendingTransaction(w, []model.OutputTx{model.NewOutputTx(value, receiver)}, fee)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create new transaction")
	}
	if err := w.Node.AddTransactionToPool(tx); err != nil {
		return nil, errors.Wrap(err, "failed to send transaction to full node")
	}
	utils.Logger().Info().Str("txHash", tx.Hash().String()).Str("value", utils.FormatAmount(value)).Msg("Transfer sent")
	return tx, nil
}

// Create a pending transaction paying outputs plus fee out of the wallet utxos. Utxos are spent
// in canonical order until they cover the amount, and whatever is left returns to the wallet.
// READONLY:
// * wallet
func CreatePendingTransaction(wallet *Wallet, outputs []model.OutputTx, fee btcutil.Amount) (*model.Tx, error) {
	if fee < 0 {
		return nil, errors.Errorf("negative fee %s", utils.FormatAmount(fee))
	}
	needed, ok := model.SumOutputs(outputs)
	if !ok {
		return nil, errors.New("outputs overflow")
	}
	if needed, ok = model.AddAmounts(needed, fee); !ok {
		return nil, errors.New("outputs overflow")
	}

	utxos := make([]model.Utxo, 0, len(wallet.UTXOs))
	for utxo := range wallet.UTXOs {
		utxos = append(utxos, utxo)
	}
	sort.Slice(utxos, func(i, j int) bool { return utxos[i].Compare(utxos[j]) < 0 })

	b := model.NewTxBuilderWithHasher(wallet.Node.Hasher())
	var spent []model.Utxo
	var total btcutil.Amount
	for _, utxo := range utxos {
		if total >= needed && len(spent) > 0 {
			break
		}
		if total, ok = model.AddAmounts(total, wallet.UTXOs[utxo].Value()); !ok {
			return nil, errors.New("inputs overflow")
		}
		b.AddInput(utxo.TxHash(), utxo.Index())
		spent = append(spent, utxo)
	}
	if total < needed || len(spent) == 0 {
		return nil, errors.Wrapf(ErrInsufficientFunds, "have %s, need %s",
			utils.FormatAmount(total), utils.FormatAmount(needed))
	}

	for _, out := range outputs {
		b.AddOutput(out.Value(), out.Address())
	}
	// Output with amount of money left after transfer.
	if change := total - needed; change > 0 {
		b.AddOutput(change, wallet.Keys.PublicKey())
	}

	// sign inputs with own private key
	for i := range spent {
		payload, err := b.SignableBytes(model.TxIndex(i))
		if err != nil {
			return nil, err
		}
		sig, err := wallet.Keys.Sign(payload)
		if err != nil {
			return nil, err
		}
		if err := b.AddSignature(sig, model.TxIndex(i)); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
