package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]btcutil.Amount{
		"10":          10 * btcutil.SatoshiPerBitcoin,
		"10.0":        10 * btcutil.SatoshiPerBitcoin,
		"9.5":         950000000,
		"0.00000001":  1,
		"-1.5":        -150000000,
		"0":           0,
		"92233720368": 92233720368 * btcutil.SatoshiPerBitcoin,
	}
	for s, expected := range cases {
		a, err := ParseAmount(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, a, s)
	}

	_, err := ParseAmount("0.000000001")
	assert.Error(t, err)
	_, err = ParseAmount("100000000000")
	assert.Error(t, err)
	_, err = ParseAmount("ten")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10", FormatAmount(10*btcutil.SatoshiPerBitcoin))
	assert.Equal(t, "9.5", FormatAmount(950000000))
	assert.Equal(t, "0.00000001", FormatAmount(1))
	assert.Equal(t, "-1.5", FormatAmount(-150000000))

	a, err := ParseAmount(FormatAmount(123456789))
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(123456789), a)
}

func TestHexRoundTrip(t *testing.T) {
	b, err := HexToBytes(BytesToHex([]byte{0, 1, 0xfe}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0xfe}, b)

	_, err = HexToBytes("xyz")
	assert.Error(t, err)
}

func TestHasherByName(t *testing.T) {
	data := []byte("scrooge")
	seen := map[string]bool{}
	for _, name := range []string{SHA256, BLAKE2B, BLAKE256} {
		h, err := HasherByName(name)
		require.NoError(t, err)
		digest := h.Hash(data)
		assert.Equal(t, digest, h.Hash(data), name)
		seen[digest.String()] = true
	}
	// Every algorithm produces a different digest.
	assert.Len(t, seen, 3)

	_, err := HasherByName("md5")
	assert.ErrorIs(t, err, ErrUnknownHashAlgorithm)
}

func TestKeyFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, scheme := range allSchemes() {
		t.Run(scheme.Name(), func(t *testing.T) {
			path := filepath.Join(dir, scheme.Name()+".pem")

			created, err := ParseKeyFile(path, scheme, true)
			require.NoError(t, err)

			loaded, err := ParseKeyFile(path, scheme, false)
			require.NoError(t, err)
			assert.Equal(t, created.PublicKey(), loaded.PublicKey())

			_, loadedScheme, err := ReadKeyFromFPath(path)
			require.NoError(t, err)
			assert.Equal(t, scheme.Name(), loadedScheme.Name())
		})
	}

	_, err := ParseKeyFile("", Ed25519Scheme{}, false)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0600))
	_, _, err = ReadKeyFromFPath(garbage)
	assert.ErrorIs(t, err, ErrKeyConstruction)
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	require.NoError(t, SetLogLevel("warn"))
	Logger().Info().Msg("hidden")
	Logger().Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	require.NoError(t, SetLogLevel("info"))
	assert.Error(t, SetLogLevel("loud"))
}
