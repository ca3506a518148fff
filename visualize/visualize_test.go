package visualize

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLedger(t *testing.T) (*model.UtxoPool, *model.Tx) {
	tx, err := model.NewTxBuilder().
		AddGenesisInput().
		AddOutput(150000000, model.Address("alice-public-key")).
		Build()
	require.NoError(t, err)
	pool := model.NewUtxoPool()
	require.NoError(t, pool.AddUtxo(model.NewUtxo(tx.Hash(), 0), tx.Output(0)))
	return pool, tx
}

func TestShortenString(t *testing.T) {
	assert.Equal(t, "abc...ghi", shortenString("abcdefghi"))
	assert.Equal(t, "abcd", shortenString("abcd"))
}

func TestConstructData(t *testing.T) {
	pool, tx := createTestLedger(t)
	l := constructData(pool, []*model.Tx{tx}, "node", 3)

	assert.Equal(t, int64(3), l.epoch)
	require.Len(t, l.utxos, 1)
	assert.Equal(t, shortenString(tx.Hash().String()), l.utxos[0].txHash)
	assert.Equal(t, "1.5", l.utxos[0].output.value)
	require.Len(t, l.accepted, 1)
	assert.Equal(t, []input{{prevTxHash: "genesis"}}, l.accepted[0].inputs)
}

func TestRender(t *testing.T) {
	pool, tx := createTestLedger(t)
	buf := &bytes.Buffer{}
	Render(buf, pool, []*model.Tx{tx}, "node", 1)
	assert.Contains(t, buf.String(), "digraph")

	path := filepath.Join(t.TempDir(), "ledger.dot")
	require.NoError(t, RenderToFile(path, pool, []*model.Tx{tx}, "node", 1))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "digraph")
}
