package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-merklicious/merklicious/ledger"
	"github.com/datatrails/go-datatrails-merklicious/store"
	"github.com/spf13/cobra"
)

// app is the state shared by the subcommands. The configuration is loaded
// once, before the subcommand runs, and is read only afterwards.
type app struct {
	configPath string
	storePath  string
	logLevel   string

	conf *Config
}

// NewRootCmd creates the base "merklicious" command, with all of its
// subcommands (create, get, prove, ...).
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "merklicious",
		Short: "Salted Merkle commitments with selective disclosure",
		Long: `merklicious commits a list of labelled values into a single Merkle root.

Each leaf is salted from per tree entropy, so the root reveals nothing about
the values. Any one leaf can later be disclosed, with a proof that it was
committed under the root, without revealing the other leaves.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.OnExit()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "TOML configuration file, "+ConfigFileName)
	flags.StringVar(&a.storePath, "store", DefaultStorePath, "leveldb directory holding the trees")
	flags.StringVar(&a.logLevel, "log-level", DefaultLogLevel, "log level, NOOP disables logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(a),
		newGetCmd(a),
		newProveCmd(a),
		newVerifyCmd(),
		newHashCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	conf, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	// flags given on the command line win over the file
	if cmd.Flags().Changed("store") {
		conf.StorePath = a.storePath
	}
	if cmd.Flags().Changed("log-level") {
		conf.LogLevel = a.logLevel
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	logger.New(conf.LogLevel)
	logger.Sugar.Debugf("config: %+v", *conf)

	a.conf = conf
	return nil
}

// openLedger opens the configured store. The returned function closes it.
func (a *app) openLedger() (*ledger.Ledger, func(), error) {
	s, err := store.OpenLevelDB(a.conf.StorePath)
	if err != nil {
		return nil, nil, err
	}

	closeStore := func() {
		if err := s.Close(); err != nil {
			logger.Sugar.Infof("closing store %s: %v", a.conf.StorePath, err)
		}
	}
	return ledger.New(s, ledger.WithContextTimeout(a.conf.ContextTimeout())), closeStore, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func readJSON(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}
