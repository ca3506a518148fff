package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommand(t *testing.T) {
	valid := map[string]Command{
		"epoch":                  {Op: EPOCH, Args: []string{}},
		"pool":                   {Op: POOL, Args: []string{}},
		"pending":                {Op: PENDING, Args: []string{}},
		"  submit  batch.yaml  ": {Op: SUBMIT, Args: []string{"batch.yaml"}},
		"balance 0aff":           {Op: BALANCE, Args: []string{"0aff"}},
		"show /tmp/pool.dot":     {Op: SHOW, Args: []string{"/tmp/pool.dot"}},
		"exit":                   {Op: QUIT, Args: []string{}},
	}
	for s, expected := range valid {
		c, err := CreateCommand(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, c, s)
	}

	for _, s := range []string{"mine", "epoch 3", "submit", "balance xyz", "show a b"} {
		_, err := CreateCommand(s)
		assert.Error(t, err, s)
	}
	for _, s := range []string{"", "   \t"} {
		c, err := CreateCommand(s)
		require.NoError(t, err)
		assert.True(t, c.IsDefault())
	}
	c, err := CreateCommand("pool")
	require.NoError(t, err)
	assert.False(t, c.IsDefault())
}

func TestCreateClientCommand(t *testing.T) {
	c, err := CreateClientCommand("transfer 0aff 1.5")
	require.NoError(t, err)
	assert.Equal(t, ClientCommand{Op: TRANSFER, Args: []string{"0aff", "1.5"}}, c)

	c, err = CreateClientCommand("transfer 0aff 1.5 0.001")
	require.NoError(t, err)
	assert.Len(t, c.Args, 3)

	c, err = CreateClientCommand("my_pk")
	require.NoError(t, err)
	assert.Equal(t, Operation(MY_PK), c.Op)

	for _, s := range []string{"", "transfer 0aff", "transfer 0aff 0", "transfer 0aff -1", "transfer zz 1", "transfer 0aff 1 -1", "get_balance me", "connect 1.1.1.1 1000"} {
		_, err := CreateClientCommand(s)
		assert.Error(t, err, s)
	}
}
