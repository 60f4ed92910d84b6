package inspect

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/group"
	"github.com/lsst-desc/railplot/project"
)

func Cmd() *cli.Command {
	var configFile string

	return &cli.Command{
		Name:  "inspect",
		Usage: "list plotters, datasets and plot groups defined by a config file",
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
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "also list selections and algorithms found in this project database",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdMain(ctx, configFile, cmd.String("project"))
		},
	}
}

func cmdMain(ctx context.Context, configFile, projectPath string) error {
	config, plotterFactory, datasetFactory, err := group.Load(configFile)
	if err != nil {
		return err
	}

	plotterFactory.WriteContents(os.Stdout)
	fmt.Println("----------------")
	datasetFactory.WriteContents(os.Stdout)
	fmt.Println("----------------")

	fmt.Println("PlotGroups:")
	for _, g := range config.Groups {
		fmt.Printf(
			"  %s: plotter_list=%s dataset_dict=%s outdir=%s figtype=%s\n",
			g.Name, g.PlotterList, g.DatasetDict, g.OutDir, g.FigType,
		)
	}

	if projectPath != "" {
		if err := writeProjectContents(ctx, projectPath); err != nil {
			return err
		}
	}

	return nil
}

func writeProjectContents(ctx context.Context, projectPath string) error {
	db, err := project.Open(projectPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := project.Close(db); err != nil {
			log.Warnf("%s", err)
		}
	}()

	selections, err := project.Selections(ctx, db)
	if err != nil {
		return err
	}
	algos, err := project.Algos(ctx, db)
	if err != nil {
		return err
	}

	fmt.Println("----------------")
	fmt.Printf("Project %s:\n", projectPath)
	fmt.Printf("  selections: %v\n", selections)
	fmt.Printf("  algorithms: %v\n", algos)

	return nil
}
