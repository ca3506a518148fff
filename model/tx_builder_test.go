package model

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHash(b byte) TxHash {
	var h TxHash
	for i := range h {
		h[i] = b
	}
	return h
}

func createTestBuilder() *TxBuilder {
	b := NewTxBuilder()
	b.AddInput(createTestHash(1), 0).
		AddInput(createTestHash(2), 3).
		AddOutput(btcutil.Amount(500), Address("alice")).
		AddOutput(btcutil.Amount(250), Address("bob"))
	return b
}

func TestBuildRequiresInputsAndOutputs(t *testing.T) {
	_, err := NewTxBuilder().AddOutput(1, Address("alice")).Build()
	assert.ErrorIs(t, err, ErrEmptyInputs)

	_, err = NewTxBuilder().AddInput(createTestHash(1), 0).Build()
	assert.ErrorIs(t, err, ErrEmptyOutputs)

	_, err = NewTxBuilder().Build()
	assert.ErrorIs(t, err, ErrEmptyInputs)

	tx, err := createTestBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, 2, tx.NumInputs())
	assert.Equal(t, 2, tx.NumOutputs())
}

func TestHashIsDeterministic(t *testing.T) {
	tx, err := createTestBuilder().Build()
	require.NoError(t, err)

	expected := DefaultHasher.Hash(GetTransactionBytes(tx.Inputs(), tx.Outputs()))
	assert.Equal(t, expected, tx.Hash())
	assert.Equal(t, tx.Hash(), HashTx(DefaultHasher, tx.Inputs(), tx.Outputs()))

	again, err := createTestBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), again.Hash())
}

func TestHashIgnoresSignatures(t *testing.T) {
	unsigned, err := createTestBuilder().Build()
	require.NoError(t, err)

	b := createTestBuilder()
	require.NoError(t, b.AddSignature(Signature("sig-0"), 0))
	require.NoError(t, b.AddSignature(Signature("sig-1"), 1))
	signed, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, unsigned.Hash(), signed.Hash())
	_, ok := signed.Input(0).(SignedInput)
	assert.True(t, ok)
}

func TestHashDependsOnContent(t *testing.T) {
	tx, err := createTestBuilder().Build()
	require.NoError(t, err)

	other, err := createTestBuilder().AddOutput(1, Address("carol")).Build()
	require.NoError(t, err)
	assert.NotEqual(t, tx.Hash(), other.Hash())
}

func TestBuilderWithCustomHasher(t *testing.T) {
	fixed := createTestHash(9)
	b := NewTxBuilderWithHasher(HasherFunc(func([]byte) TxHash { return fixed }))
	tx, err := b.AddInput(createTestHash(1), 0).AddOutput(1, Address("alice")).Build()
	require.NoError(t, err)
	assert.Equal(t, fixed, tx.Hash())
}

func TestAddSignatureOutOfBounds(t *testing.T) {
	b := createTestBuilder()
	err := b.AddSignature(Signature("sig"), 2)
	assert.ErrorIs(t, err, ErrInputIndexOutOfBounds)

	// The builder is untouched by the failure.
	for _, in := range b.Inputs() {
		_, ok := in.(UnsignedInput)
		assert.True(t, ok)
	}
}

func TestAddSignatureOnGenesis(t *testing.T) {
	b := NewTxBuilder().AddGenesisInput().AddOutput(10, Address("alice"))
	err := b.AddSignature(Signature("sig"), 0)
	assert.ErrorIs(t, err, ErrCannotSignGenesis)

	_, err = b.SignableBytes(0)
	assert.ErrorIs(t, err, ErrCannotSignGenesis)

	tx, err := b.Build()
	require.NoError(t, err)
	assert.True(t, tx.IsGenesis())
}

func TestSignableBytesIsClaimedUtxo(t *testing.T) {
	b := createTestBuilder()
	payload, err := b.SignableBytes(1)
	require.NoError(t, err)
	assert.Equal(t, NewUtxo(createTestHash(2), 3).Bytes(), payload)
}

func TestBuiltTxIsIsolatedFromBuilder(t *testing.T) {
	b := createTestBuilder()
	tx, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, b.AddSignature(Signature("late"), 0))
	b.AddOutput(1, Address("carol"))

	_, ok := tx.Input(0).(UnsignedInput)
	assert.True(t, ok)
	assert.Equal(t, 2, tx.NumOutputs())
}

func TestBuiltTxIsIsolatedFromCallers(t *testing.T) {
	b := createTestBuilder()
	require.NoError(t, b.AddSignature(Signature("sig"), 0))
	tx, err := b.Build()
	require.NoError(t, err)
	hash := tx.Hash()

	tx.Output(0).Address()[0] ^= 0xff
	tx.Outputs()[1].Address()[0] ^= 0xff
	tx.Input(0).(SignedInput).Signature()[0] ^= 0xff

	assert.Equal(t, hash, HashTx(DefaultHasher, tx.Inputs(), tx.Outputs()))
	assert.Equal(t, Address("alice"), tx.Output(0).Address())
	assert.Equal(t, Signature("sig"), tx.Input(0).(SignedInput).Signature())
}
