package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cams-catalog/internal/catalogdb"
	"cams-catalog/internal/components/chrono"
	"cams-catalog/internal/components/telemetry"
	"cams-catalog/internal/scrapers/cams"

	"github.com/spf13/cobra"
)

var (
	scrapeTerm      *string
	scrapeTermLabel *string
	scrapeOut       *string
	scrapeSave      *bool
	scrapeTable     *bool
)

func init() {
	scrapeTerm = scrapeCmd.Flags().String("term", "", "The id of the term to scrape, defaults to the latest term.")
	scrapeTermLabel = scrapeCmd.Flags().String("term-label", "", "The name of the term to scrape, ex. \"Fall 2024\".")
	scrapeOut = scrapeCmd.Flags().StringP("out", "o", "-", "The file to write the catalog as json to, - for stdout.")
	scrapeSave = scrapeCmd.Flags().Bool("save", false, "Also save the catalog to the configured database.")
	scrapeTable = scrapeCmd.Flags().Bool("table", false, "Print the catalog as a table instead of json.")
	scrapeCmd.MarkFlagsMutuallyExclusive("term", "term-label")
	rootCmd.AddCommand(scrapeCmd)
}

func resolveTerm(ctx context.Context, client *cams.Client, id, label string) (string, error) {
	if id != "" {
		return id, nil
	}
	terms, err := client.FetchTerms(ctx)
	if err != nil {
		return "", err
	}
	if label != "" {
		term, ok := terms.Match(label)
		if !ok {
			return "", fmt.Errorf("no term matches %q", label)
		}
		slog.Info("resolved term", "label", term.Label, "id", term.Id)
		return term.Id, nil
	}
	latest, _ := terms.Latest()
	slog.Info("using latest term", "label", latest.Label, "id", latest.Id)
	return latest.Id, nil
}

// scrapeCatalog scrapes a term and stamps the result with the time the scrape finished.
func scrapeCatalog(ctx context.Context, client *cams.Client, clock chrono.TimeAPI, username, password, term string) (catalogdb.Catalog, error) {
	slog.Info("scraping", "username", username, "term", term)
	start := time.Now()
	courses, err := client.ScrapeCourses(ctx, username, password, term)
	if err != nil {
		return catalogdb.Catalog{}, err
	}
	slog.Info("scraping time", "seconds", time.Since(start).Seconds(), "courses", len(courses))

	return catalogdb.Catalog{
		Term:      term,
		ScrapedAt: clock.Now(),
		Courses:   courses,
	}, nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--term <id> | --term-label <name>] [--out <catalog.json>] [--save] [--table]",
	Short: "Scrapes every course offered in a term.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		username, password, err := cfg.credentials()
		if err != nil {
			return err
		}
		clock, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			return err
		}
		client, err := cfg.newClient()
		if err != nil {
			return err
		}

		term, err := resolveTerm(ctx, client, *scrapeTerm, *scrapeTermLabel)
		if err != nil {
			return err
		}

		catalog, err := scrapeCatalog(ctx, client, clock, username, password, term)
		if err != nil {
			return err
		}

		if *scrapeSave {
			err = saveCatalog(ctx, cfg, catalog)
			if err != nil {
				return err
			}
		}

		if *scrapeTable {
			renderCatalog(os.Stdout, catalog)
			return nil
		}
		return writeJson(*scrapeOut, catalog)
	},
}

func openStore(ctx context.Context, cfg Config) (catalogdb.Store, func(), error) {
	if !cfg.Database.Configured() {
		return catalogdb.Store{}, nil, fmt.Errorf("no database configured")
	}
	db, err := cfg.Database.OpenDB()
	if err != nil {
		return catalogdb.Store{}, nil, fmt.Errorf("open database: %w", err)
	}
	store, err := catalogdb.NewStore(ctx, db, telemetry.SlogAPI{})
	if err != nil {
		db.Close()
		return catalogdb.Store{}, nil, err
	}
	return store, func() { db.Close() }, nil
}

func saveCatalog(ctx context.Context, cfg Config, catalog catalogdb.Catalog) error {
	store, closeDb, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDb()
	err = store.Save(ctx, catalog)
	if err != nil {
		return err
	}
	slog.Info("saved catalog", "term", catalog.Term, "courses", len(catalog.Courses))
	return nil
}
