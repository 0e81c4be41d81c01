package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signon-tools/go-jwt-signer/certs"
	"github.com/signon-tools/go-jwt-signer/validator"
)

type ticketOutput struct {
	Subject  string         `json:"subject,omitempty"`
	Envelope map[string]any `json:"envelope"`
	Payload  map[string]any `json:"payload"`
}

func newVerifyCommand(a *app) *cobra.Command {
	var (
		certsPath   string
		jwksPath    string
		audience    string
		issuers     []string
		subjectKeys []string
	)

	cmd := &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Verify a signed token against trusted certificates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadCertificateSet(certsPath, jwksPath)
			if err != nil {
				return err
			}

			opts := []validator.Option{
				validator.WithClockSkew(a.cfg.ClockSkew),
				validator.WithMaxLifetime(a.cfg.MaxLifetime),
				validator.WithSubjectKeys(subjectKeys...),
				validator.WithLogger(a.logger),
			}
			if len(issuers) > 0 {
				opts = append(opts, validator.WithIssuers(issuers...))
			}

			v, err := validator.New(opts...)
			if err != nil {
				return err
			}

			ticket, err := v.Verify(cmd.Context(), args[0], set, audience)
			if err != nil {
				return fmt.Errorf("%s: %w", validator.KindOf(err), err)
			}

			return printJSON(cmd, ticketOutput{
				Subject:  ticket.Subject,
				Envelope: ticket.Envelope,
				Payload:  ticket.Payload,
			})
		},
	}

	cmd.Flags().StringVar(&certsPath, "certs", "", "YAML or JSON file mapping key id to PEM certificate")
	cmd.Flags().StringVar(&jwksPath, "jwks", "", "JWKS document, instead of --certs")
	cmd.Flags().StringVar(&audience, "audience", "", "Expected audience (aud)")
	cmd.Flags().StringSliceVar(&issuers, "issuer", nil, "Accepted issuer; repeat for several")
	cmd.Flags().StringSliceVar(&subjectKeys, "subject-key", nil, "Claims to use as subject when sub is absent")
	_ = cmd.MarkFlagRequired("audience")
	cmd.MarkFlagsMutuallyExclusive("certs", "jwks")

	return cmd
}

func newJWKSCommand(a *app) *cobra.Command {
	var certsPath string

	cmd := &cobra.Command{
		Use:   "jwks",
		Short: "Print the JWKS for a certificate set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := certs.LoadFile(certsPath)
			if err != nil {
				return err
			}

			keySet, err := set.JWKS()
			if err != nil {
				return err
			}
			a.logger.Debugf("exported %d keys", keySet.Len())
			return printJSON(cmd, keySet)
		},
	}

	cmd.Flags().StringVar(&certsPath, "certs", "", "YAML or JSON file mapping key id to PEM certificate")
	_ = cmd.MarkFlagRequired("certs")

	return cmd
}

func loadCertificateSet(certsPath, jwksPath string) (certs.Set, error) {
	switch {
	case certsPath != "":
		return certs.LoadFile(certsPath)
	case jwksPath != "":
		data, err := os.ReadFile(jwksPath)
		if err != nil {
			return nil, err
		}
		return certs.FromJWKS(data)
	default:
		return nil, errors.New("one of --certs or --jwks is required")
	}
}
