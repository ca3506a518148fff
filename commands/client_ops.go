package commands

import (
	"strings"

	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/pkg/errors"
)

const (
	// do nothing operation
	NOOP = iota
	// Initiate a money transfer from wallet: transfer <receiver hex> <value> [fee]
	TRANSFER
	// Print user public key
	MY_PK
	// Get my own balance
	GET_BALANCE
)

type ClientCommand struct {
	Op   Operation
	Args []string
}

func (c ClientCommand) IsValid() bool {
	switch c.Op {
	case TRANSFER:
		if len(c.Args) != 2 && len(c.Args) != 3 {
			return false
		}
		if _, err := utils.HexToBytes(c.Args[0]); err != nil {
			return false
		}
		v, err := utils.ParseAmount(c.Args[1])
		if err != nil || v <= 0 {
			return false
		}
		if len(c.Args) == 3 {
			fee, err := utils.ParseAmount(c.Args[2])
			return err == nil && fee >= 0
		}
		return true
	case MY_PK, GET_BALANCE:
		return len(c.Args) == 0
	default:
		return false
	}
}

func CreateClientCommand(s string) (ClientCommand, error) {
	// split command by space.
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return ClientCommand{}, errors.New("command is empty")
	}
	cmd := ClientCommand{}
	switch ss[0] {
	case "transfer":
		cmd.Op = TRANSFER
	case "my_pk":
		cmd.Op = MY_PK
	case "get_balance":
		cmd.Op = GET_BALANCE
	default:
		cmd.Op = NOOP
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return ClientCommand{}, errors.New("invalid command")
	}
	return cmd, nil
}
