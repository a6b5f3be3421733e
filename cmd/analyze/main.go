// cmd/analyze/main.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/salesight/backend-go/internal/cache"
	"github.com/salesight/backend-go/internal/config"
	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
	"github.com/salesight/backend-go/internal/ingest"
	"github.com/salesight/backend-go/internal/report"
	"github.com/salesight/backend-go/internal/service"
	"github.com/salesight/backend-go/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Run the sales analytics pipeline over a transaction file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Transaction file (.csv, .xlsx or .json)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (defaults to stdout)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json or html",
				Value: "json",
			},
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Forecast horizon in days (0 uses the configured default)",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Keep transactions on or after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Keep transactions on or before this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Keep only this product category",
			},
		},
		Action: runAnalysis,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runAnalysis(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	params, err := buildParams(c)
	if err != nil {
		return err
	}

	inputPath := c.String("input")
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	table, err := ingest.Load(f, filepath.Base(inputPath))
	if err != nil {
		return err
	}

	ds, err := dataset.Build(table)
	if err != nil {
		var dateErr *dataset.DateParseError
		if errors.As(err, &dateErr) && ds != nil {
			logger.Log.Warn().Msg(dateErr.Error())
		} else {
			return err
		}
	}

	svc := service.NewAnalyticsService(cfg.Analytics, cache.NewNoopResultCache())
	result, err := svc.Dashboard(c.Context, inputPath, ds, params)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		out, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer out.Close()
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "html":
		history := ds
		if params.Category != "" {
			history = history.FilterCategory(params.Category)
		}
		filtered := history.FilterDateRange(params.From, params.To)
		return report.Render(out, report.Assemble(filtered, history, result))
	default:
		return fmt.Errorf("unknown format %q (expected json or html)", c.String("format"))
	}
}

func buildParams(c *cli.Context) (domain.AnalysisParams, error) {
	params := domain.AnalysisParams{
		HorizonDays: c.Int("horizon"),
		Category:    c.String("category"),
	}

	var err error
	if params.From, err = parseDateFlag(c.String("start")); err != nil {
		return params, fmt.Errorf("invalid --start: %w", err)
	}
	if params.To, err = parseDateFlag(c.String("end")); err != nil {
		return params, fmt.Errorf("invalid --end: %w", err)
	}
	return params, nil
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
