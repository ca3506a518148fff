package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// This is the global app config for the ledger. Keys in the yaml file are the lower case field
// names, e.g. `hash_algorithm: blake2b`.
type AppConfig struct {
	// Algorithm deriving transaction hashes: sha256, blake2b or blake256.
	HASH_ALGORITHM string
	// Signature scheme of every address in the ledger: ed25519, rsa-pss or schnorr.
	SIGNATURE_SCHEME string
	// Key size used when generating rsa-pss keys.
	RSA_KEY_BITS int
	// How many transactions are validated concurrently.
	VALIDATION_WORKERS int
	// Select the fee maximizing subset of each batch instead of first-come order.
	MAX_FEE bool
	// Largest group of conflicting transactions solved exactly by the fee maximizing selection.
	EXACT_SELECTION_LIMIT int
	// zerolog level name.
	LOG_LEVEL string
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		HASH_ALGORITHM:        "sha256",
		SIGNATURE_SCHEME:      "ed25519",
		RSA_KEY_BITS:          2048,
		VALIDATION_WORKERS:    4,
		MAX_FEE:               false,
		EXACT_SELECTION_LIMIT: 20,
		LOG_LEVEL:             "info",
	}
}

// LoadAppConfig reads the yaml file at path on top of DefaultAppConfig.
func LoadAppConfig(path string) (AppConfig, error) {
	c := DefaultAppConfig()
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.UnmarshalStrict(yamlFile, &c); err != nil {
		return c, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return c, c.Validate()
}

func (c AppConfig) Validate() error {
	switch c.HASH_ALGORITHM {
	case "sha256", "blake2b", "blake256":
	default:
		return errors.Errorf("unsupported hash_algorithm %q", c.HASH_ALGORITHM)
	}
	switch c.SIGNATURE_SCHEME {
	case "ed25519", "rsa-pss", "schnorr":
	default:
		return errors.Errorf("unsupported signature_scheme %q", c.SIGNATURE_SCHEME)
	}
	if c.RSA_KEY_BITS < 1024 {
		return errors.Errorf("rsa_key_bits must be at least 1024, got %d", c.RSA_KEY_BITS)
	}
	if c.VALIDATION_WORKERS < 1 {
		return errors.Errorf("validation_workers must be positive, got %d", c.VALIDATION_WORKERS)
	}
	if c.EXACT_SELECTION_LIMIT < 0 || c.EXACT_SELECTION_LIMIT > 30 {
		return errors.Errorf("exact_selection_limit must be within [0, 30], got %d", c.EXACT_SELECTION_LIMIT)
	}
	return nil
}
