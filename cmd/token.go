package cmd

import (
	"fmt"

	"github.com/faizan/audiobits/auth"
	"github.com/faizan/audiobits/registry"
	"github.com/spf13/cobra"
)

func newTokenCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "token <principal>",
		Short: "Issue a bearer token for a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load(cmd)
			if err != nil {
				return err
			}
			tokens, err := auth.NewManager(auth.Config{
				Secret:   cfg.Auth.Secret,
				Issuer:   cfg.Auth.Issuer,
				TokenTTL: cfg.Auth.TokenTTL,
			})
			if err != nil {
				return err
			}
			token, err := tokens.Issue(registry.Principal(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
