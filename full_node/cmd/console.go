package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/Luismorlan/scrooge_in_go/batch"
	"github.com/Luismorlan/scrooge_in_go/commands"
	"github.com/Luismorlan/scrooge_in_go/config"
	"github.com/Luismorlan/scrooge_in_go/full_node"
	"github.com/Luismorlan/scrooge_in_go/layout"
	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/Luismorlan/scrooge_in_go/visualize"
	"github.com/Luismorlan/scrooge_in_go/wallet"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func loadConfig() (config.AppConfig, error) {
	if configPath == "" {
		return config.DefaultAppConfig(), nil
	}
	return config.LoadAppConfig(configPath)
}

// newNode creates a node from the configuration. With serveMetrics set and an address given,
// handler metrics are served over http.
func newNode(serveMetrics bool) (*full_node.FullNode, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	node, err := full_node.NewFullNode(c, reg)
	if err != nil {
		return nil, err
	}
	if serveMetrics && metricsAt != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAt, mux); err != nil {
				utils.Logger().Error().Err(err).Str("addr", metricsAt).Msg("Metrics server stopped")
			}
		}()
		utils.Logger().Info().Str("addr", metricsAt).Msg("Serving metrics")
	}
	return node, nil
}

// submit applies the genesis of a batch file, if any, and queues its transactions.
func submit(node *full_node.FullNode, path string) error {
	b, err := batch.Load(path, node.Scheme(), node.Hasher())
	if err != nil {
		return err
	}
	if b.Genesis != nil {
		if err := node.Bootstrap(b.Genesis); err != nil {
			return err
		}
	}
	for _, tx := range b.Txs {
		if err := node.AddTransactionToPool(tx); err != nil {
			return err
		}
	}
	utils.Logger().Info().Str("path", path).Int("txs", len(b.Txs)).Msg("Batch submitted")
	return nil
}

func fprintPool(w io.Writer, pool *model.UtxoPool) {
	utxos := pool.AllUtxos()
	sort.Slice(utxos, func(i, j int) bool { return utxos[i].Compare(utxos[j]) < 0 })
	fmt.Fprintf(w, "%d utxo(s)\n", len(utxos))
	for _, u := range utxos {
		out, _ := pool.TxOutput(u)
		fmt.Fprintf(w, "%s %s %s\n", u, utils.FormatAmount(out.Value()), out.Address())
	}
}

func printPool(pool *model.UtxoPool) {
	fprintPool(os.Stdout, pool)
}

// console runs node and client commands read line by line.
type console struct {
	node   *full_node.FullNode
	wallet *wallet.Wallet
	out    io.Writer
}

const consoleUsage = `node commands:
  submit <batch file>
  epoch
  pool
  pending
  balance <address hex>
  show <dot file>
  quit

wallet commands, with --key:
  transfer <receiver hex> <value> [fee]
  my_pk
  get_balance`

// newConsole creates a console printing to out, with a wallet when a key file was given.
func newConsole(node *full_node.FullNode, out io.Writer) (*console, error) {
	c := &console{node: node, out: out}
	if keyPath == "" {
		return c, nil
	}
	keys, err := utils.ParseKeyFile(keyPath, node.Scheme(), false)
	if err != nil {
		return nil, err
	}
	c.wallet = wallet.NewWallet(keys, node)
	fmt.Fprintf(out, "wallet address: %s\n", keys.PublicKey())
	return c, nil
}

func runConsole(node *full_node.FullNode, in io.Reader, out io.Writer) error {
	c, err := newConsole(node, out)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		quit, err := c.handle(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, err)
		}
		if quit {
			return nil
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

// handler lets the terminal ui drive c, printing to whichever view it passes.
func (c *console) handler() layout.Handler {
	return func(line string, out io.Writer) (bool, error) {
		c.out = out
		return c.handle(line)
	}
}

func runTui(node *full_node.FullNode) error {
	usage := &bytes.Buffer{}
	c, err := newConsole(node, usage)
	if err != nil {
		return err
	}
	fmt.Fprintf(usage, "%s\n", consoleUsage)
	return layout.Run(c.handler(), usage.String())
}

func (c *console) handle(line string) (bool, error) {
	if cmd, err := commands.CreateCommand(line); err == nil {
		if cmd.IsDefault() {
			return false, nil
		}
		return cmd.Op == commands.QUIT, c.handleNode(cmd)
	}
	cmd, err := commands.CreateClientCommand(line)
	if err != nil {
		return false, errors.Errorf("unrecognized command: %q", line)
	}
	return false, c.handleClient(cmd)
}

func (c *console) handleNode(cmd commands.Command) error {
	switch cmd.Op {
	case commands.SUBMIT:
		return submit(c.node, cmd.Args[0])
	case commands.EPOCH:
		accepted := c.node.ProcessEpoch()
		fmt.Fprintf(c.out, "epoch %d accepted %d transaction(s)\n", c.node.Epoch(), len(accepted))
		for _, tx := range accepted {
			fmt.Fprintln(c.out, tx)
		}
	case commands.POOL:
		fprintPool(c.out, c.node.GetPoolSnapshot())
	case commands.PENDING:
		for _, tx := range c.node.PendingTransactions() {
			fmt.Fprintln(c.out, tx)
		}
	case commands.BALANCE:
		address, err := utils.HexToBytes(cmd.Args[0])
		if err != nil {
			return err
		}
		balance, err := c.node.GetBalance(address)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, utils.FormatAmount(balance))
	case commands.SHOW:
		return visualize.RenderToFile(cmd.Args[0], c.node.GetPoolSnapshot(), c.node.LastAccepted(), c.node.Id(), c.node.Epoch())
	case commands.QUIT:
	default:
		return errors.Errorf("unimplemented command: %d", cmd.Op)
	}
	return nil
}

func (c *console) handleClient(cmd commands.ClientCommand) error {
	if c.wallet == nil {
		return errors.New("no wallet, start the console with --key")
	}
	switch cmd.Op {
	case commands.TRANSFER:
		receiver, err := utils.HexToBytes(cmd.Args[0])
		if err != nil {
			return err
		}
		value, err := utils.ParseAmount(cmd.Args[1])
		if err != nil {
			return err
		}
		var fee btcutil.Amount
		if len(cmd.Args) == 3 {
			if fee, err = utils.ParseAmount(cmd.Args[2]); err != nil {
				return err
			}
		}
		tx, err := c.wallet.TransferMoney(receiver, value, fee)
		if err != nil {
			return errors.Wrap(err, "fail to transfer money")
		}
		fmt.Fprintf(c.out, "queued %s\n", tx)
	case commands.MY_PK:
		fmt.Fprintln(c.out, c.wallet.Keys.PublicKey())
	case commands.GET_BALANCE:
		v, err := c.wallet.GetBalance()
		if err != nil {
			return errors.Wrap(err, "fail to get balance")
		}
		fmt.Fprintf(c.out, "your total balance is: %s\n", utils.FormatAmount(v))
	default:
		return errors.Errorf("unimplemented command: %d", cmd.Op)
	}
	return nil
}
