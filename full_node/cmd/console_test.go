package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestBatch(t *testing.T) (string, utils.KeyPair, utils.KeyPair) {
	dir := t.TempDir()
	alice, err := utils.ParseKeyFile(filepath.Join(dir, "alice.pem"), utils.Ed25519Scheme{}, true)
	require.NoError(t, err)
	bob, err := utils.ParseKeyFile(filepath.Join(dir, "bob.pem"), utils.Ed25519Scheme{}, true)
	require.NoError(t, err)

	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
genesis:
  - value: "10"
    key: alice.pem
transactions:
  - inputs:
      - prev_tx: genesis
        index: 0
        key: alice.pem
    outputs:
      - value: "9"
        key: bob.pem
`), 0644))
	return path, alice, bob
}

func TestConsole(t *testing.T) {
	path, alice, bob := writeTestBatch(t)
	node, err := newNode(false)
	require.NoError(t, err)
	require.NoError(t, submit(node, path))

	in := strings.NewReader(fmt.Sprintf("pending\n\nepoch\nbalance %s\nbalance %s\nmine\nmy_pk\nquit\npool\n",
		bob.PublicKey(), alice.PublicKey()))
	out := &bytes.Buffer{}
	require.NoError(t, runConsole(node, in, out))

	lines := out.String()
	assert.Contains(t, lines, "epoch 1 accepted 1 transaction(s)")
	assert.Contains(t, lines, "> 9\n")
	assert.Contains(t, lines, "> 0\n")
	assert.Contains(t, lines, `unrecognized command: "mine"`)
	assert.NotContains(t, lines, `unrecognized command: ""`)
	assert.Contains(t, lines, "no wallet")
	// Nothing runs after quit.
	assert.NotContains(t, lines, "utxo(s)")
}

func TestConsoleWallet(t *testing.T) {
	path, alice, bob := writeTestBatch(t)
	node, err := newNode(false)
	require.NoError(t, err)
	require.NoError(t, submit(node, path))
	node.ProcessEpoch()

	keyPath = filepath.Join(filepath.Dir(path), "bob.pem")
	defer func() { keyPath = "" }()

	in := strings.NewReader(fmt.Sprintf("get_balance\ntransfer %s 8 0.5\nepoch\nget_balance\npool\n", alice.PublicKey()))
	out := &bytes.Buffer{}
	require.NoError(t, runConsole(node, in, out))

	lines := out.String()
	assert.Contains(t, lines, fmt.Sprintf("wallet address: %s", bob.PublicKey()))
	assert.Contains(t, lines, "your total balance is: 9\n")
	assert.Contains(t, lines, "your total balance is: 0.5\n")
	assert.Contains(t, lines, "2 utxo(s)")
}

func TestConsoleHandler(t *testing.T) {
	path, _, bob := writeTestBatch(t)
	node, err := newNode(false)
	require.NoError(t, err)
	require.NoError(t, submit(node, path))

	c, err := newConsole(node, &bytes.Buffer{})
	require.NoError(t, err)
	handle := c.handler()

	out := &bytes.Buffer{}
	quit, err := handle("epoch", out)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "epoch 1 accepted 1 transaction(s)")

	out.Reset()
	_, err = handle(fmt.Sprintf("balance %s", bob.PublicKey()), out)
	require.NoError(t, err)
	assert.Equal(t, "9\n", out.String())

	_, err = handle("my_pk", out)
	assert.ErrorContains(t, err, "no wallet")

	quit, err = handle("quit", out)
	require.NoError(t, err)
	assert.True(t, quit)
}
