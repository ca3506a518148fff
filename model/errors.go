package model

import "github.com/pkg/errors"

// Construction errors. These never leave a builder in a broken state.
var (
	ErrEmptyInputs           = errors.New("there must be at least one input to build a transaction")
	ErrEmptyOutputs          = errors.New("there must be at least one output to build a transaction")
	ErrInputIndexOutOfBounds = errors.New("input index is out of bounds")
	ErrTxIndexOverflow       = errors.New("transaction index does not fit the platform int")
)

// Input state transition errors.
var (
	ErrCannotSignGenesis   = errors.New("it is not possible to sign a genesis input")
	ErrCannotUnsignGenesis = errors.New("it is not possible to unsign a genesis input")
)

// Pool errors.
var (
	ErrDuplicateUtxo        = errors.New("attempted to add duplicate utxo to the pool")
	ErrUtxoNotFound         = errors.New("utxo not found in the pool")
	ErrDuplicateTransaction = errors.New("existing transaction, will not process")
)
