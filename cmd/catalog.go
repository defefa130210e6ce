package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bardbit/stremio-mdblist-importer/services/catalog"
	"github.com/bardbit/stremio-mdblist-importer/services/mdblist"
)

func newCatalogCmd(load settingsLoader) *cobra.Command {
	var (
		mediaType string
		lists     string
		apiKey    string
	)

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Resolve one catalog and print it as JSON",
		Long: `Fetches the given lists, merges them the way the addon does and prints the
catalog. Per-list diagnostics are written to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			if apiKey == "" {
				apiKey = settings.MDBList.APIKey
			}

			client := mdblist.NewClient(settings.MDBList, nil)
			svc := catalog.NewService(client, settings.Catalog)
			resp := svc.Resolve(cmd.Context(), catalog.ParseListIDs(lists), strings.ToLower(mediaType), apiKey)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}

			for _, src := range resp.Sources {
				if src.Failed() {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: failed: %s\n", src.Slug, src.Error)
					continue
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d items, %d added\n", src.Slug, src.Items, src.Accepted)
			}
			return nil
		},
	}

	catalogCmd.Flags().StringVarP(&mediaType, "type", "t", "movie", "content type (movie or series)")
	catalogCmd.Flags().StringVarP(&lists, "lists", "l", "", "comma separated list slugs")
	catalogCmd.Flags().StringVar(&apiKey, "api-key", "", "MDBList API key (defaults to the configured key)")
	catalogCmd.MarkFlagRequired("lists")
	return catalogCmd
}
