// Package cli implements the signonctl command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	signon "github.com/signon-tools/go-jwt-signer"
)

type app struct {
	cfg    *Config
	logger signon.Logger
}

// NewRootCommand builds the signonctl command tree.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile string
		envFile string
		a       = &app{}
	)
	v := newViper()

	root := &cobra.Command{
		Use:   "signonctl",
		Short: "Sign service-account assertions and verify signed tokens",
		Long: `signonctl signs bearer assertions with a PKCS#12 service-account key and
verifies RS256 tokens against a set of trusted certificates.

The key bundle passphrase is read from SIGNON_PASSPHRASE (or the config
file) and defaults to "notasecret".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading SIGNON_* variables")
	bindFlags(root, v)

	root.AddCommand(
		newSignCommand(a),
		newVerifyCommand(a),
		newJWKSCommand(a),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
