package commands

import (
	"strings"

	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/pkg/errors"
)

type Operation int

const (
	// Blank input, nothing to do.
	DEFAULT = iota
	// Queue the transactions of a batch file, applying its genesis first if it has one.
	SUBMIT
	// Handle all pending transactions as one epoch.
	EPOCH
	// Print every utxo in the pool.
	POOL
	// Print the pending transactions.
	PENDING
	// Print the balance of an address.
	BALANCE
	// Render the pool and the last accepted transactions as a dot file.
	SHOW
	// Leave the console.
	QUIT
)

// A command contains a operation and many arguments.
type Command struct {
	Op   Operation
	Args []string
}

func (c Command) IsValid() bool {
	switch c.Op {
	case DEFAULT, EPOCH, POOL, PENDING, QUIT:
		return len(c.Args) == 0
	case SUBMIT, SHOW:
		return len(c.Args) == 1 && c.Args[0] != ""
	case BALANCE:
		if len(c.Args) != 1 {
			return false
		}
		// address must be hex.
		_, err := utils.HexToBytes(c.Args[0])
		return err == nil
	default:
		return false
	}
}

// From string, create
func CreateCommand(s string) (Command, error) {
	// split command by space.
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return NewDefaultCommand(), nil
	}
	cmd := Command{}
	switch ss[0] {
	case "submit":
		cmd.Op = SUBMIT
	case "epoch":
		cmd.Op = EPOCH
	case "pool":
		cmd.Op = POOL
	case "pending":
		cmd.Op = PENDING
	case "balance":
		cmd.Op = BALANCE
	case "show":
		cmd.Op = SHOW
	case "quit", "exit":
		cmd.Op = QUIT
	default:
		return Command{}, errors.Errorf("unknown command %q", ss[0])
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.New("invalid command")
	}
	return cmd, nil
}

// Create a brand new command with default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}
