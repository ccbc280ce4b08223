// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/pktchain/internal/config"
	"firestige.xyz/pktchain/internal/log"
)

const defaultConfigFile = "./pktchain.yml"

var (
	// Global flags
	configFile string
	logLevel   string

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pktchain",
	Short: "pktchain - layered packet decoding and round-trip checking",
	Long: `pktchain decodes frames into chains of protocol headers (Ethernet with
802.1Q/QinQ tags, LLC, MPLS, IPv4, IPv6, UDP) and re-serializes them.

It reads hex strings or pcap/pcapng files, prints the decoded layers, and
verifies that every frame survives deserialize, serialize and clone unchanged.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile,
		"config file path (optional when left at the default)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log.level (trace/debug/info/warn/error)")

	// Add subcommands
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(roundtripCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadConfig reads the config file and initializes logging. A missing
// default config file is not an error; an explicitly passed one must exist.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := readConfig(configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
		if err := loaded.ValidateAndApplyDefaults(); err != nil {
			return err
		}
	}
	if err := log.Init(loaded.Log); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	cfg = loaded
	log.GetLogger().WithField("config", configFile).Debug("configuration loaded")
	return nil
}

func readConfig(path string, explicit bool) (*config.Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Load("")
		}
	}
	return config.Load(path)
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
