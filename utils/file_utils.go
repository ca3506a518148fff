package utils

import (
	"encoding/pem"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const pemTypeSuffix = " PRIVATE KEY"

// ParseKeyFile reads the key at fPath, or generates one with scheme and saves it there when
// createNewKey is set.
func ParseKeyFile(fPath string, scheme Scheme, createNewKey bool) (KeyPair, error) {
	if fPath == "" {
		return nil, errors.New("file path is missing")
	}
	if createNewKey {
		Logger().Info().Str("scheme", scheme.Name()).Msg("Generating a new key")
		key, err := scheme.GenerateKey()
		if err != nil {
			return nil, errors.Wrap(err, "got error when generating new key")
		}
		if err := SavePrivateKeyToFile(key, scheme, fPath); err != nil {
			return nil, err
		}
		return key, nil
	}
	key, _, err := ReadKeyFromFPath(fPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read your key from path %s", fPath)
	}
	return key, nil
}

// SavePrivateKeyToFile writes the key as a PEM block whose type names the scheme,
// e.g. "ED25519 PRIVATE KEY".
func SavePrivateKeyToFile(key KeyPair, scheme Scheme, fPath string) error {
	block := &pem.Block{
		Type:  strings.ToUpper(scheme.Name()) + pemTypeSuffix,
		Bytes: key.Bytes(),
	}
	if err := os.WriteFile(fPath, pem.EncodeToMemory(block), 0600); err != nil {
		return errors.Wrapf(err, "failed to save key in %s", fPath)
	}
	Logger().Info().Str("path", fPath).Msg("Saved private key in file")
	return nil
}

// ReadKeyFromFPath loads a key written by SavePrivateKeyToFile, along with its scheme.
func ReadKeyFromFPath(fPath string) (KeyPair, Scheme, error) {
	fileContent, err := os.ReadFile(fPath)
	if err != nil {
		return nil, nil, err
	}
	block, _ := pem.Decode(fileContent)
	if block == nil {
		return nil, nil, errors.Wrap(ErrKeyConstruction, "no PEM block found")
	}
	if !strings.HasSuffix(block.Type, pemTypeSuffix) {
		return nil, nil, errors.Wrapf(ErrKeyConstruction, "unexpected PEM type %q", block.Type)
	}
	scheme, err := SchemeByName(strings.ToLower(strings.TrimSuffix(block.Type, pemTypeSuffix)), 0)
	if err != nil {
		return nil, nil, err
	}
	key, err := scheme.ParsePrivateKey(block.Bytes)
	if err != nil {
		return nil, nil, err
	}
	return key, scheme, nil
}
