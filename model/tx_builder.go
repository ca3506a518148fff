package model

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/errors"
)

// TxBuilder stages inputs, outputs and signatures until Build produces an immutable Tx.
type TxBuilder struct {
	inputs  []InputTx
	outputs []OutputTx
	hasher  Hasher
}

func NewTxBuilder() *TxBuilder {
	return NewTxBuilderWithHasher(DefaultHasher)
}

func NewTxBuilderWithHasher(h Hasher) *TxBuilder {
	return &TxBuilder{hasher: h}
}

// AddInput appends an unsigned input claiming output outputIndex of prevTxHash.
func (b *TxBuilder) AddInput(prevTxHash TxHash, outputIndex TxIndex) *TxBuilder {
	b.inputs = append(b.inputs, NewUnsignedInput(NewUtxo(prevTxHash, outputIndex)))
	return b
}

// AddGenesisInput appends the sentinel input of a bootstrap transaction.
func (b *TxBuilder) AddGenesisInput() *TxBuilder {
	b.inputs = append(b.inputs, GenesisInput{})
	return b
}

func (b *TxBuilder) AddOutput(value btcutil.Amount, address Address) *TxBuilder {
	b.outputs = append(b.outputs, NewOutputTx(value, address))
	return b
}

// AddSignature signs the input at index. On failure the builder is left untouched.
func (b *TxBuilder) AddSignature(signature Signature, index TxIndex) error {
	i, err := b.inputIndex(index)
	if err != nil {
		return err
	}
	signed, err := b.inputs[i].Sign(signature)
	if err != nil {
		return errors.Wrapf(err, "input %d", i)
	}
	b.inputs[i] = signed
	return nil
}

// SignableBytes returns the payload the owner of the utxo claimed by input index has to sign.
func (b *TxBuilder) SignableBytes(index TxIndex) ([]byte, error) {
	i, err := b.inputIndex(index)
	if err != nil {
		return nil, err
	}
	utxo, ok := ClaimedUtxo(b.inputs[i])
	if !ok {
		return nil, errors.Wrapf(ErrCannotSignGenesis, "input %d", i)
	}
	return utxo.Bytes(), nil
}

func (b *TxBuilder) inputIndex(index TxIndex) (int, error) {
	i, err := index.Int()
	if err != nil || i >= len(b.inputs) {
		return 0, errors.Wrapf(ErrInputIndexOutOfBounds, "index %d, have %d inputs", uint64(index), len(b.inputs))
	}
	return i, nil
}

func (b *TxBuilder) Inputs() []InputTx {
	return append([]InputTx(nil), b.inputs...)
}

func (b *TxBuilder) Outputs() []OutputTx {
	return append([]OutputTx(nil), b.outputs...)
}

// Build hashes the staged inputs (unsigned form) and outputs and returns the transaction.
func (b *TxBuilder) Build() (*Tx, error) {
	if len(b.inputs) == 0 {
		return nil, ErrEmptyInputs
	}
	if len(b.outputs) == 0 {
		return nil, ErrEmptyOutputs
	}
	tx := &Tx{
		inputs:  b.Inputs(),
		outputs: b.Outputs(),
	}
	tx.hash = HashTx(b.hasher, tx.inputs, tx.outputs)
	return tx, nil
}

// HashTx computes the transaction hash over the unsigned form of inputs followed by outputs.
func HashTx(h Hasher, inputs []InputTx, outputs []OutputTx) TxHash {
	return h.Hash(GetTransactionBytes(inputs, outputs))
}
