package model

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hasher derives a transaction hash from canonical transaction bytes.
type Hasher interface {
	Hash(data []byte) TxHash
}

// HasherFunc adapts a plain function to Hasher.
type HasherFunc func(data []byte) TxHash

func (f HasherFunc) Hash(data []byte) TxHash {
	return f(data)
}

// DefaultHasher is single SHA-256.
var DefaultHasher Hasher = HasherFunc(func(data []byte) TxHash {
	return TxHash(chainhash.HashH(data))
})

// Verifier checks that signature is a valid signature of message under pub.
type Verifier interface {
	Verify(pub Address, message []byte, signature Signature) bool
}

// InputTx is one of GenesisInput, UnsignedInput or SignedInput.
type InputTx interface {
	// Sign returns the signed form of the input.
	Sign(signature Signature) (InputTx, error)
	// Unsign strips the signature.
	Unsign() (InputTx, error)

	isInputTx()
}

// GenesisInput only appears in the bootstrap transaction of a ledger.
type GenesisInput struct{}

func (GenesisInput) Sign(Signature) (InputTx, error) {
	return nil, ErrCannotSignGenesis
}

func (GenesisInput) Unsign() (InputTx, error) {
	return nil, ErrCannotUnsignGenesis
}

func (GenesisInput) isInputTx() {}

// UnsignedInput claims a utxo but is not authorized yet.
type UnsignedInput struct {
	utxo Utxo
}

func NewUnsignedInput(utxo Utxo) UnsignedInput {
	return UnsignedInput{utxo: utxo}
}

func (in UnsignedInput) Utxo() Utxo {
	return in.utxo
}

func (in UnsignedInput) Sign(signature Signature) (InputTx, error) {
	return NewSignedInput(in.utxo, signature), nil
}

func (in UnsignedInput) Unsign() (InputTx, error) {
	return in, nil
}

func (UnsignedInput) isInputTx() {}

// SignedInput claims a utxo with the owner's signature over the utxo bytes.
type SignedInput struct {
	utxo      Utxo
	signature Signature
}

func NewSignedInput(utxo Utxo, signature Signature) SignedInput {
	return SignedInput{utxo: utxo, signature: append(Signature(nil), signature...)}
}

func (in SignedInput) Utxo() Utxo {
	return in.utxo
}

// Signature returns a copy of the signature.
func (in SignedInput) Signature() Signature {
	return append(Signature(nil), in.signature...)
}

// Sign replaces the existing signature.
func (in SignedInput) Sign(signature Signature) (InputTx, error) {
	return NewSignedInput(in.utxo, signature), nil
}

func (in SignedInput) Unsign() (InputTx, error) {
	return UnsignedInput{utxo: in.utxo}, nil
}

func (SignedInput) isInputTx() {}

// ClaimedUtxo returns the utxo an input spends; genesis inputs claim nothing.
func ClaimedUtxo(in InputTx) (Utxo, bool) {
	switch v := in.(type) {
	case UnsignedInput:
		return v.utxo, true
	case SignedInput:
		return v.utxo, true
	case GenesisInput:
		return Utxo{}, false
	default:
		return Utxo{}, false
	}
}

type OutputTx struct {
	// How much value to transfer.
	value btcutil.Amount
	// Public key of the receiver.
	address Address
}

func NewOutputTx(value btcutil.Amount, address Address) OutputTx {
	return OutputTx{
		value:   value,
		address: append(Address(nil), address...),
	}
}

func (o OutputTx) Value() btcutil.Amount {
	return o.value
}

// Address returns a copy of the receiver key.
func (o OutputTx) Address() Address {
	return append(Address(nil), o.address...)
}

// Transaction is immutable once built by TxBuilder.
type Tx struct {
	// Hash of this transaction. We use this to uniquely identify the transaction.
	hash TxHash
	// All inputs of this transaction, never empty.
	inputs []InputTx
	// All outputs of this transaction, never empty.
	outputs []OutputTx
}

func (t *Tx) Hash() TxHash {
	return t.hash
}

func (t *Tx) Inputs() []InputTx {
	return append([]InputTx(nil), t.inputs...)
}

func (t *Tx) Outputs() []OutputTx {
	return append([]OutputTx(nil), t.outputs...)
}

func (t *Tx) NumInputs() int {
	return len(t.inputs)
}

func (t *Tx) NumOutputs() int {
	return len(t.outputs)
}

func (t *Tx) Input(i int) InputTx {
	return t.inputs[i]
}

func (t *Tx) Output(i int) OutputTx {
	return t.outputs[i]
}

// IsGenesis reports whether every input of the transaction is a genesis input.
func (t *Tx) IsGenesis() bool {
	for _, in := range t.inputs {
		if _, ok := in.(GenesisInput); !ok {
			return false
		}
	}
	return true
}

func (t *Tx) String() string {
	return t.hash.String()
}
