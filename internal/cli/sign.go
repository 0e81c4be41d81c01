package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/signon-tools/go-jwt-signer/assertion"
	"github.com/signon-tools/go-jwt-signer/keys"
)

type signOutput struct {
	Assertion string `json:"assertion"`
	GrantType string `json:"grant_type"`
	CacheKey  string `json:"cache_key"`
}

func newSignCommand(a *app) *cobra.Command {
	var (
		bundlePath string
		pemPath    string
		issuer     string
		scopes     []string
		audience   string
		lifetime   time.Duration
		keyID      string
		subject    string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Generate a signed bearer assertion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := loadKeyMaterial(bundlePath, pemPath, a.cfg.Passphrase)
			if err != nil {
				return err
			}

			opts := []assertion.Option{
				assertion.WithLifetime(lifetime),
				assertion.WithKeyID(keyID),
				assertion.WithSubject(subject),
				assertion.WithLogger(a.logger),
			}
			if audience != "" {
				opts = append(opts, assertion.WithAudience(audience))
			}

			builder, err := assertion.New(issuer, assertion.Scopes(scopes...), km, opts...)
			if err != nil {
				return err
			}

			signed, err := builder.Generate()
			if err != nil {
				return err
			}

			return printJSON(cmd, signOutput{
				Assertion: signed,
				GrantType: assertion.GrantType,
				CacheKey:  builder.CacheKey(),
			})
		},
	}

	cmd.Flags().StringVar(&bundlePath, "bundle", "", "PKCS#12 key bundle")
	cmd.Flags().StringVar(&pemPath, "pem", "", "PEM private key (with optional certificate), instead of --bundle")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Service account identity (iss)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Requested scope; repeat for several")
	cmd.Flags().StringVar(&audience, "audience", "", "Token endpoint (aud), defaults to "+assertion.DefaultAudience)
	cmd.Flags().DurationVar(&lifetime, "lifetime", assertion.DefaultLifetime, "Assertion lifetime")
	cmd.Flags().StringVar(&keyID, "kid", "", "Key id header")
	cmd.Flags().StringVar(&subject, "subject", "", "Account to act on behalf of (sub)")
	_ = cmd.MarkFlagRequired("issuer")
	cmd.MarkFlagsMutuallyExclusive("bundle", "pem")

	return cmd
}

func loadKeyMaterial(bundlePath, pemPath, passphrase string) (*keys.KeyMaterial, error) {
	switch {
	case bundlePath != "":
		return keys.LoadPKCS12File(bundlePath, passphrase)
	case pemPath != "":
		data, err := os.ReadFile(pemPath)
		if err != nil {
			return nil, err
		}
		return keys.LoadPEM(data)
	default:
		return nil, errors.New("one of --bundle or --pem is required")
	}
}
