package model

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/wire"
)

const (
	// Hash followed by a big endian uint64 index.
	utxoSize = TxHashSize + 8

	genesisInputTag byte = 0
	spendInputTag   byte = 1
)

func appendUtxo(b []byte, u Utxo) []byte {
	b = append(b, u.txHash[:]...)
	return binary.BigEndian.AppendUint64(b, uint64(u.index))
}

// GetInputBytes returns the canonical bytes of an input in its unsigned form. Signatures never
// take part in the encoding, so signing an input does not change the transaction hash.
func GetInputBytes(in InputTx) []byte {
	switch v := in.(type) {
	case GenesisInput:
		return []byte{genesisInputTag}
	case UnsignedInput:
		return appendUtxo([]byte{spendInputTag}, v.utxo)
	case SignedInput:
		return appendUtxo([]byte{spendInputTag}, v.utxo)
	default:
		panic("unknown input variant")
	}
}

// GetOutputBytes returns value (big endian satoshis) followed by the var-length address.
func GetOutputBytes(out OutputTx) []byte {
	var buf bytes.Buffer
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(out.value))
	buf.Write(v[:])
	// Writes to a bytes.Buffer cannot fail.
	_ = wire.WriteVarBytes(&buf, 0, out.address)
	return buf.Bytes()
}

// GetTransactionBytes concats all inputs (unsigned) and outputs raw data in byte slices.
func GetTransactionBytes(inputs []InputTx, outputs []OutputTx) []byte {
	var data []byte
	for _, in := range inputs {
		data = append(data, GetInputBytes(in)...)
	}
	for _, out := range outputs {
		data = append(data, GetOutputBytes(out)...)
	}
	return data
}
