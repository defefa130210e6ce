package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bardbit/stremio-mdblist-importer/config"
)

func newConfigCmd(path func() string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "Print the environment variables that override settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := config.EnvDescription()
			if err != nil {
				return fmt.Errorf("describe env: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default settings to the --config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path() == "" {
				return errors.New("--config is required")
			}
			mgr := config.NewManager(path())
			if err := mgr.Save(config.DefaultSettings()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default settings to %s\n", mgr.Path())
			return nil
		},
	})

	return configCmd
}
