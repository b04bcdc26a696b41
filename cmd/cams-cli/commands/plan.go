package commands

import (
	"fmt"
	"os"

	"cams-catalog/internal/catalogdb"
	"cams-catalog/internal/planner"
	"cams-catalog/internal/scrapers/cams"

	"github.com/spf13/cobra"
)

var (
	planCatalog *string
	planTerm    *string
	planLimit   *int
)

func init() {
	planCatalog = planCmd.Flags().String("catalog", "", "A catalog json file written by scrape, the configured database is used otherwise.")
	planTerm = planCmd.Flags().String("term", "", "The term to read from the database, defaults to the greatest stored term.")
	planLimit = planCmd.Flags().Int("limit", 25, "The maximum number of schedules to print, 0 prints all of them.")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan [--catalog <catalog.json> | --term <id>] <COURSE>...",
	Short: "Lists every conflict free schedule of the given courses, ex. plan MAC2311 COP3337",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var catalog catalogdb.Catalog
		var err error
		if *planCatalog != "" {
			catalog, err = readCatalogJson(*planCatalog)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
		} else {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			store, closeDb, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDb()

			term := *planTerm
			if term == "" {
				terms, err := store.Terms(cmd.Context())
				if err != nil {
					return err
				}
				stored := cams.Terms{}
				for _, id := range terms {
					stored = append(stored, cams.Term{Id: id})
				}
				latest, ok := stored.Latest()
				if !ok {
					return fmt.Errorf("no catalogs saved yet, run scrape --save first")
				}
				term = latest.Id
			}
			catalog, err = store.Catalog(cmd.Context(), term)
			if err != nil {
				return err
			}
		}

		schedules, err := planner.Schedules(catalog.Courses, args)
		if err != nil {
			return err
		}
		renderSchedules(os.Stdout, schedules, *planLimit)
		return nil
	},
}
