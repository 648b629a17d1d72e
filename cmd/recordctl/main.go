// Package main provides recordctl, a command line client for the record store.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/thebtf/recordsearch/internal/config"
	"github.com/thebtf/recordsearch/internal/db/gorm"
	"github.com/thebtf/recordsearch/internal/search"
	"github.com/thebtf/recordsearch/internal/seed"
	"github.com/thebtf/recordsearch/pkg/models"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("recordctl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recordctl",
		Usage: "Search and seed station records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (default: settings)",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Database driver, sqlite or postgres (default: settings)",
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "PostgreSQL connection string",
				EnvVars: []string{"RECORDSEARCH_DATABASE_DSN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank names across a station's records",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "station", Aliases: []string{"s"}, Usage: "Station id", Required: true},
					&cli.Int64Flag{Name: "officer", Usage: "Officer id, used for case visibility"},
					&cli.StringFlag{Name: "role", Usage: "Officer role", Value: string(models.RoleAdmin)},
					&cli.Float64Flag{Name: "threshold", Usage: "Minimum score (default: settings, 60)"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum results (default: settings, 10)"},
					&cli.BoolFlag{Name: "cases", Usage: "Rank visible cases instead of names"},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load stations, officers, criminals and cases from a YAML fixture",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Fixture path", Required: true},
				},
			},
			{
				Name:   "next-case-id",
				Usage:  "Print the next case number",
				Action: nextCaseIDCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	level, err := zerolog.ParseLevel(strings.ToLower(c.String("log-level")))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
	return nil
}

// openStore opens the database named by flags, falling back to settings.
func openStore(c *cli.Context) (*gorm.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v := c.String("db"); v != "" {
		cfg.DBPath = v
	} else if err := config.EnsureDataDir(); err != nil {
		return nil, nil, err
	}
	if v := c.String("driver"); v != "" {
		cfg.DBDriver = v
	}
	if v := c.String("dsn"); v != "" {
		cfg.DatabaseDSN = v
	}

	store, err := gorm.NewStore(gorm.Config{
		Driver:   gorm.Driver(cfg.DBDriver),
		Path:     cfg.DBPath,
		DSN:      cfg.DatabaseDSN,
		MaxConns: cfg.MaxConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, cfg, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	store, cfg, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	records := gorm.NewRecordStore(store)
	manager := search.NewManager(records,
		search.WithDefaults(cfg.SearchThreshold, cfg.SearchLimit, cfg.SearchMaxLimit))
	scope := models.Scope{
		StationID: c.Int64("station"),
		OfficerID: c.Int64("officer"),
		Role:      models.Role(c.String("role")),
	}

	var (
		threshold *float64
		limit     *int
	)
	if c.IsSet("threshold") {
		v := c.Float64("threshold")
		threshold = &v
	}
	if c.IsSet("limit") {
		v := c.Int("limit")
		limit = &v
	}

	if c.Bool("cases") {
		cases, err := records.ListCases(ctx, scope, gorm.CaseFilter{})
		if err != nil {
			return err
		}
		return printJSON(c, manager.RankCases(ctx, query, cases, threshold, limit))
	}

	resp := manager.Search(ctx, scope, search.Params{
		Query:     query,
		Threshold: threshold,
		Limit:     limit,
	})
	return printJSON(c, resp)
}

func seedCommand(c *cli.Context) error {
	fx, err := seed.Load(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to load fixture: %w", err)
	}

	store, _, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := seed.NewSeeder(store).Apply(context.Background(), fx)
	if err != nil {
		return err
	}
	return printJSON(c, res)
}

func nextCaseIDCommand(c *cli.Context) error {
	store, _, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	next, err := gorm.NewCaseStore(store).NextCaseNumber(context.Background(), time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, next)
	return err
}
