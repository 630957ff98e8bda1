package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/spades"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

var cmdMain = &cobra.Command{
	Use:   "spadesd",
	Short: "Quorum-gated wallet ledger daemon",
	Long: `spadesd keeps the ledger state on disk and applies signed transactions
to it. Configuration is read from flags or SPADES_HOME, SPADES_DB and
SPADES_LOG_LEVEL environment variables.`,
	SilenceUsage: true,
}

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), spades.Version())
	},
}

const (
	keyHome     = "home"
	keyDB       = "db"
	keyLogLevel = "log_level"
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".spades")

	flags := cmdMain.PersistentFlags()
	flags.String("home", defaultHome, "directory to store the genesis and data under")
	flags.String("db", "badger", "storage engine: badger, iavl or memory")
	flags.String("log-level", "info", "minimal log level: debug, info, error or none")
	viper.BindPFlag(keyHome, flags.Lookup("home"))
	viper.BindPFlag(keyDB, flags.Lookup("db"))
	viper.BindPFlag(keyLogLevel, flags.Lookup("log-level"))

	viper.SetEnvPrefix("spades")
	viper.AutomaticEnv()

	cmdMain.AddCommand(cmdInit, cmdApply, cmdQuery, cmdServe, cmdStart, cmdVersion)
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a logger writing to stderr, filtered by the configured
// level.
func newLogger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(viper.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt).With("module", "spadesd"), nil
}

func genesisPath() string {
	return filepath.Join(viper.GetString(keyHome), "genesis.json")
}
