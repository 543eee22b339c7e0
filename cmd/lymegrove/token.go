package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/franckalain/lymegrove/internal/auth"
	"github.com/spf13/cobra"
)

func (c *cli) tokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a session token for a user (needs the server's auth secret)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := auth.NewTokens(secret, ttl).Issue(args[0])
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}
			return c.print(cmd.OutOrStdout(), map[string]string{"user": args[0], "token": tok}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, tok)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("LYMEGROVE_AUTH_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
