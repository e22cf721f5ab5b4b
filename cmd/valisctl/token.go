package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/valislegal/valis/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		secret string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <tenant>",
		Short: "Issue a bearer token for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("VALIS_JWT_SECRET")
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set VALIS_JWT_SECRET")
			}
			token, err := auth.NewJWTResolver(secret).Issue(args[0], email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
