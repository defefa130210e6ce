package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bardbit/stremio-mdblist-importer/config"
)

// NewRootCmd builds the mdblist-importer command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:          "mdblist-importer",
		Short:        "Serve MDBList lists as Stremio catalogs",
		Long:         `mdblist-importer is a Stremio addon that merges MDBList lists into movie and series catalogs.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(
		&cfgFile,
		"config",
		"c",
		"",
		"path to settings file (JSON); environment variables override it",
	)

	load := func() (config.Settings, error) {
		return config.NewManager(cfgFile).Load()
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newCatalogCmd(load),
		newListsCmd(load),
		newConfigCmd(func() string { return cfgFile }),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type settingsLoader func() (config.Settings, error)
