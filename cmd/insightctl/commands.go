package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/radiusdt/vector-insights/internal/aggregate"
	"github.com/radiusdt/vector-insights/internal/builder"
	"github.com/radiusdt/vector-insights/internal/execution"
	"github.com/radiusdt/vector-insights/internal/insights"
	"github.com/radiusdt/vector-insights/internal/kpi"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/segments"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func inputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    usage + " (- for stdin)",
		Required: true,
	}
}

func deriveCommand() *cli.Command {
	return &cli.Command{
		Name:  "derive",
		Usage: "Derive the KPIs of one entity",
		Flags: []cli.Flag{inputFlag("Path to an entity JSON object")},
		Action: func(c *cli.Context) error {
			var m models.EntityMetrics
			if err := readJSON(c, c.String("input"), &m); err != nil {
				return err
			}
			return writeJSON(c, kpi.Derive(m))
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Aggregate a list of entities",
		Flags: []cli.Flag{inputFlag("Path to a JSON array of entities")},
		Action: func(c *cli.Context) error {
			var entities []models.EntityMetrics
			if err := readJSON(c, c.String("input"), &entities); err != nil {
				return err
			}
			return writeJSON(c, aggregate.Fold(entities))
		},
	}
}

func segmentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "segments",
		Usage: "Resolve segment breakdowns with bid suggestions",
		Flags: []cli.Flag{
			inputFlag("Path to an entity JSON object"),
			&cli.StringFlag{
				Name:    "platform",
				Aliases: []string{"p"},
				Usage:   "Platform (facebook, google, tiktok); defaults to the entity's",
			},
			&cli.StringFlag{
				Name:  "real",
				Usage: "Path to observed breakdowns JSON",
			},
		},
		Action: func(c *cli.Context) error {
			var m models.EntityMetrics
			if err := readJSON(c, c.String("input"), &m); err != nil {
				return err
			}
			var real models.RealSegmentData
			if path := c.String("real"); path != "" {
				if err := readJSON(c, path, &real); err != nil {
					return err
				}
			}
			var p models.Platform
			if raw := c.String("platform"); raw != "" {
				parsed, err := models.ParsePlatform(raw)
				if err != nil {
					return err
				}
				p = parsed
			}

			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			svc := insights.NewSegmentService(nil, nil, segments.NewReconciler(nil, nil, logger), logger)
			res, err := svc.Resolve(c.Context, m, p, real)
			if err != nil {
				return err
			}
			return writeJSON(c, res)
		},
	}
}

func mapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "Map a suggestion type to its executable action",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Suggestion type", Required: true},
			&cli.Float64Flag{Name: "budget", Aliases: []string{"b"}, Usage: "Current budget"},
		},
		Action: func(c *cli.Context) error {
			svc := insights.NewSuggestionService(nil, nil, nil, nil, nil)
			return writeJSON(c, svc.Map(models.SuggestionType(c.String("type")), c.Float64("budget")))
		},
	}
}

func nameCommand() *cli.Command {
	return &cli.Command{
		Name:  "name",
		Usage: "Generate a campaign name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "entity", Aliases: []string{"e"}, Usage: "Source entity name", Required: true},
			&cli.Float64Flag{Name: "budget", Aliases: []string{"b"}, Usage: "Budget", Required: true},
			&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Value: string(models.BidLowestCost), Usage: "Bid strategy"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Date as YYYY-MM-DD; defaults to today"},
		},
		Action: func(c *cli.Context) error {
			date := time.Now()
			if raw := c.String("date"); raw != "" {
				parsed, err := time.Parse("2006-01-02", raw)
				if err != nil {
					return fmt.Errorf("bad date %q: %w", raw, err)
				}
				date = parsed
			}
			name := builder.GenerateName(date, c.String("entity"), c.Float64("budget"), models.BidStrategy(c.String("strategy")))
			_, err := fmt.Fprintln(c.App.Writer, name)
			return err
		},
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Assemble a build configuration without submitting it",
		Flags: []cli.Flag{inputFlag("Path to a build request JSON object")},
		Action: func(c *cli.Context) error {
			var req insights.BuildRequest
			if err := readJSON(c, c.String("input"), &req); err != nil {
				return err
			}
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			svc := insights.NewBuildService(nil, execution.NewRecorder(), nil, logger)
			cfg, err := svc.Preview(c.Context, req)
			if err != nil {
				return err
			}
			return writeJSON(c, cfg)
		},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return middleware.NewLogger(c.String("log-level"), "console")
}

func readJSON(c *cli.Context, path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = c.App.Reader
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
