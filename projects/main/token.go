package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/thingweb/components/security/secjwt"
)

func newTokenCmd(cfg *config) *cobra.Command {
	var (
		ttl    time.Duration
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue the access token signed with THINGWEB_JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JWTSecret == "" {
				return errors.New("THINGWEB_JWT_SECRET is not set")
			}

			issuer, err := secjwt.NewIssuer(jwtParams(cfg))
			if err != nil {
				return err
			}

			token, err := issuer.Issue(args[0], ttl, scopes...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	flags.StringSliceVar(&scopes, "scope", nil,
		`allowed "<METHOD> <path-prefix>" entries, e.g. "GET /things/led"`)

	return cmd
}
