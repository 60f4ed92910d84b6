package run

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/group"
	"github.com/lsst-desc/railplot/project"
)

func Cmd() *cli.Command {
	var configFile string

	return &cli.Command{
		Name:  "run",
		Usage: "make all plots defined by a config file",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "config",
				UsageText:   "<config-file>",
				Destination: &configFile,
				Min:         1,
				Max:         1,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "project",
				Aliases:  []string{"p"},
				Usage:    "project database file to extract catalog data from",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "include-group",
				Aliases: []string{"i"},
				Usage:   "plot groups to run, all groups when not given",
			},
			&cli.StringSliceFlag{
				Name:    "exclude-group",
				Aliases: []string{"x"},
				Usage:   "plot groups to skip",
			},
			&cli.BoolFlag{
				Name:  "save-plots",
				Usage: "write figures to disk",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "purge-plots",
				Usage: "drop figures from memory after saving",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "outdir",
				Aliases: []string{"o"},
				Usage:   "override output directory for every group",
			},
			&cli.StringFlag{
				Name:    "figtype",
				Aliases: []string{"f"},
				Usage:   "override figure type for every group",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			options := getOptionsFromCmd(cmd)
			return cmdMain(ctx, configFile, options)
		},
	}
}

type options struct {
	projectPath string
	runOpts     group.RunOptions
}

func getOptionsFromCmd(cmd *cli.Command) options {
	return options{
		projectPath: cmd.String("project"),
		runOpts: group.RunOptions{
			IncludeGroups: cmd.StringSlice("include-group"),
			ExcludeGroups: cmd.StringSlice("exclude-group"),
			SavePlots:     cmd.Bool("save-plots"),
			PurgePlots:    cmd.Bool("purge-plots"),
			OutDir:        cmd.String("outdir"),
			FigType:       cmd.String("figtype"),
		},
	}
}

func cmdMain(ctx context.Context, configFile string, options options) error {
	db, err := project.Open(options.projectPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := project.Close(db); err != nil {
			log.Warnf("%s", err)
		}
	}()

	_, err = group.Run(ctx, configFile, db, options.runOpts)
	if err != nil {
		return fmt.Errorf("plot run failed: %s", err)
	}

	return nil
}
