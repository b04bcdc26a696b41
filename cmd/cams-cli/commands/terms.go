package commands

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(termsCmd)
}

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Lists the terms the portal has a catalog for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		client, err := cfg.newClient()
		if err != nil {
			return err
		}
		terms, err := client.FetchTerms(cmd.Context())
		if err != nil {
			return err
		}
		renderTerms(os.Stdout, terms)
		return nil
	},
}
