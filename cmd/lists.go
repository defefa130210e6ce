package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bardbit/stremio-mdblist-importer/services/mdblist"
)

func newListsCmd(load settingsLoader) *cobra.Command {
	var apiKey string

	listsCmd := &cobra.Command{
		Use:   "lists",
		Short: "List the MDBList lists owned by an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			if apiKey == "" {
				apiKey = settings.MDBList.APIKey
			}

			client := mdblist.NewClient(settings.MDBList, nil)
			lists, err := client.ResolveOwnedLists(cmd.Context(), apiKey)
			if err != nil {
				return fmt.Errorf("%s: %w", mdblist.KindOf(err), err)
			}
			if len(lists) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no lists found")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tNAME\tITEMS\tTYPE")
			for _, l := range lists {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.Slug, l.Name, l.Items, l.MediaType)
			}
			return tw.Flush()
		},
	}

	listsCmd.Flags().StringVar(&apiKey, "api-key", "", "MDBList API key (defaults to the configured key)")
	return listsCmd
}
