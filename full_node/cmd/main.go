package main

import (
	"fmt"
	"os"

	"github.com/Luismorlan/scrooge_in_go/batch"
	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/Luismorlan/scrooge_in_go/visualize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	batchPath  string
	keyPath    string
	dotPath    string
	scheme     string
	utxoRef    string
	metricsAt  string
	tui        bool
)

var rootCmd = &cobra.Command{
	Use:          "scrooge",
	Short:        "Validate batches of transactions against a utxo pool",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		return utils.SetLogLevel(c.LOG_LEVEL)
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a private key and print its address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if scheme == "" {
			scheme = c.SIGNATURE_SCHEME
		}
		s, err := utils.SchemeByName(scheme, c.RSA_KEY_BITS)
		if err != nil {
			return err
		}
		key, err := utils.ParseKeyFile(keyPath, s, true)
		if err != nil {
			return err
		}
		fmt.Println(key.PublicKey())
		return nil
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address of a key file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _, err := utils.ReadKeyFromFPath(keyPath)
		if err != nil {
			return err
		}
		fmt.Println(key.PublicKey())
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign the claim of a utxo given as <tx hash>:<index>",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		utxo, err := model.ParseUtxo(utxoRef)
		if err != nil {
			return err
		}
		key, _, err := utils.ReadKeyFromFPath(keyPath)
		if err != nil {
			return err
		}
		sig, err := key.Sign(utxo.Bytes())
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	},
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Print the genesis transaction of a batch file and the utxos it creates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := newNode(false)
		if err != nil {
			return err
		}
		b, err := batch.Load(batchPath, node.Scheme(), node.Hasher())
		if err != nil {
			return err
		}
		if b.Genesis == nil {
			return errors.Errorf("%s has no genesis", batchPath)
		}
		fmt.Println(b.Genesis.Hash())
		for i := 0; i < b.Genesis.NumOutputs(); i++ {
			out := b.Genesis.Output(i)
			fmt.Printf("%s:%d %s %s\n", b.Genesis.Hash(), i, utils.FormatAmount(out.Value()), out.Address())
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Bootstrap a pool from a batch file and handle its transactions as one epoch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := newNode(false)
		if err != nil {
			return err
		}
		if err := submit(node, batchPath); err != nil {
			return err
		}
		accepted := node.ProcessEpoch()
		fmt.Printf("accepted %d transaction(s)\n", len(accepted))
		for _, tx := range accepted {
			fmt.Println(tx)
		}
		printPool(node.GetPoolSnapshot())
		if dotPath != "" {
			return visualize.RenderToFile(dotPath, node.GetPoolSnapshot(), accepted, node.Id(), node.Epoch())
		}
		return nil
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run an interactive node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := newNode(true)
		if err != nil {
			return err
		}
		if batchPath != "" {
			if err := submit(node, batchPath); err != nil {
				return err
			}
		}
		if tui {
			return runTui(node)
		}
		return runConsole(node, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the yaml app config, defaults are used when empty")

	keygenCmd.Flags().StringVar(&scheme, "scheme", "", "signature scheme, the configured one when empty")
	keygenCmd.Flags().StringVar(&keyPath, "out", "", "where to write the private key")
	keygenCmd.MarkFlagRequired("out")

	addressCmd.Flags().StringVar(&keyPath, "key", "", "private key file")
	addressCmd.MarkFlagRequired("key")

	signCmd.Flags().StringVar(&keyPath, "key", "", "private key file")
	signCmd.Flags().StringVar(&utxoRef, "utxo", "", "utxo to claim, as <tx hash>:<index>")
	signCmd.MarkFlagRequired("key")
	signCmd.MarkFlagRequired("utxo")

	genesisCmd.Flags().StringVar(&batchPath, "batch", "", "batch file")
	genesisCmd.MarkFlagRequired("batch")

	applyCmd.Flags().StringVar(&batchPath, "batch", "", "batch file")
	applyCmd.Flags().StringVar(&dotPath, "dot", "", "render the resulting pool to this dot file")
	applyCmd.MarkFlagRequired("batch")

	consoleCmd.Flags().StringVar(&batchPath, "batch", "", "batch file submitted on start")
	consoleCmd.Flags().StringVar(&keyPath, "key", "", "private key of the console wallet")
	consoleCmd.Flags().StringVar(&metricsAt, "metrics-addr", "", "serve prometheus metrics on this address")
	consoleCmd.Flags().BoolVar(&tui, "tui", false, "use a terminal ui instead of reading lines from stdin")

	rootCmd.AddCommand(keygenCmd, addressCmd, signCmd, genesisCmd, applyCmd, consoleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
