package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"firestige.xyz/pktchain/internal/config"
)

var validatePrint bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file syntax and semantics without decoding anything.`,
	// Validation must report a broken file, not fail while loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(configFile, validatePrint, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validatePrint, "print", false, "print the effective configuration as YAML")
}

func runValidate(path string, printConfig bool, w io.Writer) error {
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "VALID: %s\n", path)
	if !printConfig {
		return nil
	}
	out, err := yaml.Marshal(map[string]*config.Config{"pktchain": c})
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = w.Write(out)
	return err
}
