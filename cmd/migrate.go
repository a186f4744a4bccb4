package cmd

import (
	"fmt"

	"github.com/faizan/audiobits/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the registry tables and ID counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.DriverMemory {
				return fmt.Errorf("nothing to migrate for the %s driver", config.DriverMemory)
			}
			_, closer, err := openStore(cfg.Database, log)
			if err != nil {
				return err
			}
			defer closer.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database\n", cfg.Database.Driver)
			return nil
		},
	}
}
