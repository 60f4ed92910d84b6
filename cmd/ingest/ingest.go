package ingest

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/project"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "load point estimate catalog CSVs into a project database",
		ArgsUsage: " <catalog-csv>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "project",
				Aliases:  []string{"p"},
				Usage:    "project database file, created when missing",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "selection",
				Usage: "object selection the catalogs belong to",
				Value: "default",
			},
			&cli.StringFlag{
				Name:  "flavor",
				Usage: "analysis flavor the catalogs belong to",
				Value: "baseline",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "data split tag, e.g. train or test",
				Value: "test",
			},
			&cli.StringFlag{
				Name:     "algo",
				Usage:    "estimation algorithm that produced the catalogs",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			catalogs := cmd.Args().Slice()
			if len(catalogs) == 0 {
				return fmt.Errorf("expecting at least one catalog file")
			}

			options := getOptionsFromCmd(cmd)
			return cmdMain(ctx, catalogs, options)
		},
	}
}

type options struct {
	projectPath string
	meta        project.Meta
}

func getOptionsFromCmd(cmd *cli.Command) options {
	return options{
		projectPath: cmd.String("project"),
		meta: project.Meta{
			Selection: cmd.String("selection"),
			Flavor:    cmd.String("flavor"),
			Tag:       cmd.String("tag"),
			Algo:      cmd.String("algo"),
		},
	}
}

func cmdMain(ctx context.Context, catalogs []string, options options) error {
	db, err := project.Open(options.projectPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := project.Close(db); err != nil {
			log.Warnf("%s", err)
		}
	}()

	count, err := project.IngestCatalogs(ctx, db, catalogs, options.meta)
	if err != nil {
		return err
	}

	log.Infof(
		"ingested %d rows from %d catalog files as selection=%s flavor=%s tag=%s algo=%s",
		count, len(catalogs),
		options.meta.Selection, options.meta.Flavor, options.meta.Tag, options.meta.Algo,
	)

	return nil
}
