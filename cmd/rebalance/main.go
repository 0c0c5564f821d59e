// cmd/rebalance/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/storeops/rebalance/internal/cache"
	"github.com/storeops/rebalance/internal/config"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/export"
	"github.com/storeops/rebalance/internal/repository/postgres"
	"github.com/storeops/rebalance/internal/service"
	"github.com/storeops/rebalance/internal/storage"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newTenantFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "tenant",
		Usage:   "Tenant to operate on",
		Value:   "default",
		EnvVars: []string{"REBALANCE_TENANT"},
	}
}

type cliServices struct {
	db          *postgres.DB
	constraints *service.ConstraintService
	engine      *service.EngineService
	suggestions *service.SuggestionService
}

func buildServices(c *cli.Context) (*cliServices, error) {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return nil, err
	}

	cfg := config.Load()
	constraintRepo := postgres.NewConstraintRepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)
	runRepo := postgres.NewRunRepository(db)
	metricsRepo := postgres.NewStoreMetricsRepository(db)

	// A CLI tier recalculation must still drop the server's cached dashboard.
	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		log.Printf("warning: dashboard cache unavailable: %v", err)
		dashboardCache = cache.NewNoopDashboardCache()
	}

	constraints := service.NewConstraintService(constraintRepo, cache.NewNoopConstraintCache())
	return &cliServices{
		db:          db,
		constraints: constraints,
		engine: service.NewEngineService(
			constraints, suggestionRepo, runRepo, metricsRepo, dashboardCache,
			cfg.Engine.WarehouseLocation, cfg.Engine.WorkerCount,
		),
		suggestions: service.NewSuggestionService(suggestionRepo, constraints),
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "rebalance",
		Usage: "Run allocation passes and manage the constraint registry",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Seed the constraint registry with defaults for a tenant",
				Flags: []cli.Flag{newDBURLFlag(), newTenantFlag()},
				Action: func(c *cli.Context) error {
					svc, err := buildServices(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					seeded, err := svc.constraints.Seed(c.Context, c.String("tenant"))
					if err != nil {
						return err
					}
					fmt.Printf("seeded %d constraints for tenant %s\n", seeded, c.String("tenant"))
					return nil
				},
			},
			{
				Name:  "run",
				Usage: "Run the allocation engine (push passes)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTenantFlag(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Allocation mode: V1, V2 or both",
						Value: "both",
					},
				},
				Action: func(c *cli.Context) error {
					svc, err := buildServices(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					report, err := svc.engine.RunAllocation(c.Context, c.String("tenant"), domain.EngineMode(c.String("mode")))
					if err != nil {
						return err
					}
					fmt.Printf("run %s created %d suggestions\n", report.RunID, report.SuggestionsCreated)
					return nil
				},
			},
			{
				Name:  "rebalance",
				Usage: "Run the lateral/recall rebalance pass",
				Flags: []cli.Flag{newDBURLFlag(), newTenantFlag()},
				Action: func(c *cli.Context) error {
					svc, err := buildServices(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					report, err := svc.engine.RunRebalance(c.Context, c.String("tenant"))
					if err != nil {
						return err
					}
					fmt.Printf("run %s created %d suggestions\n", report.RunID, report.SuggestionsCreated)
					return nil
				},
			},
			{
				Name:  "recalc-tiers",
				Usage: "Recalculate store tiers from current metrics",
				Flags: []cli.Flag{newDBURLFlag(), newTenantFlag()},
				Action: func(c *cli.Context) error {
					svc, err := buildServices(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					report, err := svc.engine.RecalcTiers(c.Context, c.String("tenant"))
					if err != nil {
						return err
					}
					fmt.Printf("%d stores, %d tier changes\n", report.TotalStores, report.TierChanges)
					return nil
				},
			},
			{
				Name:  "summary",
				Usage: "Print the reason breakdown for a run's suggestions",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTenantFlag(),
					&cli.StringFlag{
						Name:     "run",
						Usage:    "Run id to summarize",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					svc, err := buildServices(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					line, counts, err := svc.suggestions.ReasonSummary(c.Context, c.String("tenant"), c.String("run"))
					if err != nil {
						return err
					}
					if line == "" {
						fmt.Println("no suggestions for this run")
						return nil
					}
					fmt.Println(line)
					for _, rc := range counts {
						fmt.Printf("  %-14s %d\n", rc.Category, rc.Count)
					}
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "Export a run's approved suggestions as an xlsx manifest",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTenantFlag(),
					&cli.StringFlag{
						Name:     "run",
						Usage:    "Run id to export",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					svc, err := buildServices(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					cfg := config.Load()
					if !cfg.Export.Enabled {
						return fmt.Errorf("export is not configured (set EXPORT_ENABLED)")
					}
					objectStore, err := storage.NewS3Client(cfg.Export)
					if err != nil {
						return err
					}

					exporter := export.NewManifestExporter(
						postgres.NewSuggestionRepository(svc.db), objectStore, cfg.Export.KeyPrefix)
					key, err := exporter.Export(c.Context, c.String("tenant"), c.String("run"))
					if err != nil {
						return err
					}
					fmt.Printf("manifest uploaded to %s\n", key)
					return nil
				},
			},
			{
				Name:  "manifests",
				Usage: "List exported transfer manifests for a tenant",
				Flags: []cli.Flag{newTenantFlag()},
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					if !cfg.Export.Enabled {
						return fmt.Errorf("export is not configured (set EXPORT_ENABLED)")
					}
					objectStore, err := storage.NewS3Client(cfg.Export)
					if err != nil {
						return err
					}

					prefix := fmt.Sprintf("%s/%s/", cfg.Export.KeyPrefix, c.String("tenant"))
					objects, err := objectStore.ListObjects(c.Context, prefix)
					if err != nil {
						return err
					}
					if len(objects) == 0 {
						fmt.Println("no manifests found")
						return nil
					}
					for _, obj := range objects {
						fmt.Printf("%s%s\n", prefix, obj.Key)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
