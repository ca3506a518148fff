package utils

import (
	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/dchest/blake256"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	SHA256   = "sha256"
	BLAKE2B  = "blake2b"
	BLAKE256 = "blake256"
)

var ErrUnknownHashAlgorithm = errors.New("unknown hash algorithm")

var hashers = map[string]model.Hasher{
	SHA256: model.DefaultHasher,
	BLAKE2B: model.HasherFunc(func(data []byte) model.TxHash {
		return model.TxHash(blake2b.Sum256(data))
	}),
	BLAKE256: model.HasherFunc(func(data []byte) model.TxHash {
		var h model.TxHash
		d := blake256.New()
		d.Write(data)
		copy(h[:], d.Sum(nil))
		return h
	}),
}

// HasherByName returns the transaction hasher for one of SHA256, BLAKE2B or BLAKE256.
func HasherByName(name string) (model.Hasher, error) {
	h, ok := hashers[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHashAlgorithm, "%q", name)
	}
	return h, nil
}
