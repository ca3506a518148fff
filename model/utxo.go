package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Unspent transaction output. The hash and index together identify the unique output, and the
// pool is keyed by it.
type Utxo struct {
	// Hash of the transaction that created the output.
	txHash TxHash
	// The index of the output in that transaction.
	index TxIndex
}

func NewUtxo(txHash TxHash, index TxIndex) Utxo {
	return Utxo{
		txHash: txHash,
		index:  index,
	}
}

// ParseUtxo reads the "<hex hash>:<index>" form produced by String.
func ParseUtxo(s string) (Utxo, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Utxo{}, errors.Errorf("invalid utxo %q, want <hash>:<index>", s)
	}
	h, err := NewTxHashFromStr(parts[0])
	if err != nil {
		return Utxo{}, err
	}
	i, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Utxo{}, errors.Wrapf(err, "invalid utxo index %q", parts[1])
	}
	return NewUtxo(h, TxIndex(i)), nil
}

func (u Utxo) TxHash() TxHash {
	return u.txHash
}

func (u Utxo) Index() TxIndex {
	return u.index
}

// Bytes returns the payload an owner signs to spend this utxo.
func (u Utxo) Bytes() []byte {
	return appendUtxo(make([]byte, 0, utxoSize), u)
}

// Compare orders by hash first, then by index.
func (u Utxo) Compare(other Utxo) int {
	if c := u.txHash.Compare(other.txHash); c != 0 {
		return c
	}
	switch {
	case u.index < other.index:
		return -1
	case u.index > other.index:
		return 1
	}
	return 0
}

func (u Utxo) String() string {
	return fmt.Sprintf("%s:%d", u.txHash, uint64(u.index))
}
