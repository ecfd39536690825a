// Command tokengen mints caller tokens for local use and operator secrets
// with their bcrypt hash.
//
//	tokengen caller <address> [--ttl 1h]
//	tokengen operator
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "chainid/internal/jwt_token"
	"chainid/internal/platform/config"
	id "chainid/pkg/domain"
	"chainid/pkg/secrets"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tokengen",
		Short:         "Mint chainid caller tokens and operator secrets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCallerCmd(), newOperatorCmd())
	return root
}

func newCallerCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "caller <address>",
		Short: "Sign a caller token whose subject is address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := id.ParseAddress(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience).
				GenerateCallerToken(addr, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime; defaults to TOKEN_TTL")
	return cmd
}

func newOperatorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operator",
		Short: "Generate an operator token and its OPERATOR_TOKEN_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := secrets.Generate()
			if err != nil {
				return err
			}
			hash, err := secrets.Hash(token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "operator token: %s\nOPERATOR_TOKEN_HASH=%s\n", token, hash)
			return nil
		},
	}
}
