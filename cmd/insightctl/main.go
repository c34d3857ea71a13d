// insightctl runs the insight engine offline against JSON files.
//
// Usage:
//
//	insightctl summary --input entities.json
//	insightctl segments --input entity.json --platform google [--real real.json]
//	insightctl map --type scale_high_performer --budget 50
//	insightctl name --entity "Summer Sale" --budget 120 --strategy manual_cpc
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "insightctl",
		Usage:   "Derive KPIs, resolve segments and preview builds from JSON files",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"VECTOR_INSIGHTS_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent JSON output",
			},
		},
		Commands: []*cli.Command{
			deriveCommand(),
			summaryCommand(),
			segmentsCommand(),
			mapCommand(),
			nameCommand(),
			buildCommand(),
		},
	}
}
