package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/cmd/bundle"
	"github.com/lsst-desc/railplot/cmd/convert"
	"github.com/lsst-desc/railplot/cmd/ingest"
	"github.com/lsst-desc/railplot/cmd/inspect"
	"github.com/lsst-desc/railplot/cmd/report"
	"github.com/lsst-desc/railplot/cmd/run"

	// Register builtin plotter and extractor kinds.
	_ "github.com/lsst-desc/railplot/pzextract"
	_ "github.com/lsst-desc/railplot/pzplot"
)

func main() {
	cmd := &cli.Command{
		Name:    "railplot",
		Usage:   "produce diagnostic plots for p(z) estimation projects",
		Version: "0.1.0",
		Commands: []*cli.Command{
			run.Cmd(),
			inspect.Cmd(),
			ingest.Cmd(),
			convert.Cmd(),
			report.Cmd(),
			bundle.Cmd(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
