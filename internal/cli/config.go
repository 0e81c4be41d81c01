package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	signon "github.com/signon-tools/go-jwt-signer"
	"github.com/signon-tools/go-jwt-signer/validator"
)

// DefaultPassphrase is the passphrase service-account key bundles are
// issued with.
const DefaultPassphrase = "notasecret"

// Config holds settings shared by every command. Values come from, in
// increasing precedence: defaults, the config file, SIGNON_* environment
// variables (a .env file is loaded first), then flags.
type Config struct {
	Passphrase  string        `mapstructure:"passphrase"`
	LogLevel    string        `mapstructure:"log_level"`
	ClockSkew   time.Duration `mapstructure:"clock_skew"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SIGNON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("passphrase", DefaultPassphrase)
	v.SetDefault("log_level", "warn")
	v.SetDefault("clock_skew", validator.DefaultClockSkew)
	v.SetDefault("max_lifetime", validator.DefaultMaxLifetime)
	return v
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Duration("clock-skew", 0, "Allowed clock skew when verifying")
	cmd.PersistentFlags().Duration("max-lifetime", 0, "Maximum token lifetime accepted when verifying")

	_ = v.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("clock_skew", cmd.PersistentFlags().Lookup("clock-skew"))
	_ = v.BindPFlag("max_lifetime", cmd.PersistentFlags().Lookup("max-lifetime"))
}

func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func newLogger(level string, out io.Writer) (signon.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.Out = out
	l.Level = lvl
	return signon.NewLogrusLogger(l), nil
}
