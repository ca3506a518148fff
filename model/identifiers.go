package model

import (
	"bytes"
	"encoding/hex"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// TxHashSize is the width of a transaction hash in bytes.
const TxHashSize = chainhash.HashSize

// TxHash identifies a transaction by the digest of its canonical bytes.
type TxHash chainhash.Hash

// NewTxHashFromStr parses a plain (non byte-reversed) hex string of exactly TxHashSize bytes.
func NewTxHashFromStr(s string) (TxHash, error) {
	var h TxHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.Wrapf(err, "invalid tx hash %q", s)
	}
	if len(b) != TxHashSize {
		return h, errors.Errorf("invalid tx hash length %d, want %d", len(b), TxHashSize)
	}
	copy(h[:], b)
	return h, nil
}

// String returns the hash in hex, in storage byte order.
func (h TxHash) String() string {
	return hex.EncodeToString(h[:])
}

// Compare orders hashes byte-lexicographically.
func (h TxHash) Compare(other TxHash) int {
	return bytes.Compare(h[:], other[:])
}

// TxIndex is the position of an output within its transaction.
type TxIndex uint64

// NewTxIndex converts a slice position into a TxIndex.
func NewTxIndex(i int) (TxIndex, error) {
	if i < 0 {
		return 0, errors.Wrapf(ErrTxIndexOverflow, "negative index %d", i)
	}
	return TxIndex(i), nil
}

// Int converts the index back into a slice position, refusing values that would be truncated.
func (i TxIndex) Int() (int, error) {
	if uint64(i) > math.MaxInt {
		return 0, errors.Wrapf(ErrTxIndexOverflow, "index %d", uint64(i))
	}
	return int(i), nil
}

// Address is the public key of the owner of an output, in the signature scheme's encoding.
type Address []byte

func (a Address) Equal(other Address) bool {
	return bytes.Equal(a, other)
}

func (a Address) String() string {
	return hex.EncodeToString(a)
}

// Signature authorizes the spending of a single utxo.
type Signature []byte

func (s Signature) String() string {
	return hex.EncodeToString(s)
}
