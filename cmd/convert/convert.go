package convert

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/common"
)

// Extensions of files the converter will pick up from a plot directory.
var sourceExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".webp", ".gif"}

func Cmd() *cli.Command {
	var target string
	var format string

	return &cli.Command{
		Name:  "convert",
		Usage: "convert saved figures to another image format",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "job",
				Aliases: []string{"j"},
				Usage:   "conversion job count",
				Value:   int64(runtime.NumCPU()),
			},
			&cli.BoolFlag{
				Name:  "remove-source",
				Usage: "remove source file after conversion",
				Value: false,
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "target",
				UsageText:   "<path>",
				Destination: &target,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "format",
				UsageText:   " <format>",
				Destination: &format,
				Min:         1,
				Max:         1,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			options := getOptionsFromCmd(cmd)
			return cmdMain(options, target, format)
		},
	}
}

type options struct {
	jobCnt       int
	removeSource bool
}

func getOptionsFromCmd(cmd *cli.Command) options {
	return options{
		jobCnt:       clampJobCount(int(cmd.Int("job"))),
		removeSource: cmd.Bool("remove-source"),
	}
}

// clampJobCount keeps at least one worker alive, queued conversions would
// otherwise block forever on an unread channel.
func clampJobCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func cmdMain(options options, target, format string) error {
	if !slices.Contains(common.AllImageFormats, format) {
		return fmt.Errorf(
			"unknown image format %s, supported formats are %v",
			format, common.AllImageFormats,
		)
	}

	stat, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to access %s: %s", target, err)
	}

	fileMode := stat.Mode()
	if !fileMode.IsDir() && !fileMode.IsRegular() {
		return fmt.Errorf("target path does not point to a directory or file: %s", target)
	}

	var group sync.WaitGroup
	taskChan := make(chan string, options.jobCnt)

	for i := options.jobCnt; i > 0; i-- {
		go conversionWorker(&group, taskChan, options, format)
	}

	if fileMode.IsRegular() {
		group.Add(1)
		taskChan <- target
	} else {
		entryList, err := os.ReadDir(target)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %s", target, err)
		}

		for _, entry := range entryList {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !slices.Contains(sourceExts, ext) {
				continue
			}

			group.Add(1)
			taskChan <- filepath.Join(target, entry.Name())
		}
	}

	group.Wait()
	close(taskChan)

	return nil
}

func conversionWorker(group *sync.WaitGroup, taskChan <-chan string, options options, format string) {
	for filePath := range taskChan {
		err := convertImage(filePath, format)
		if err == nil {
			if options.removeSource {
				os.Remove(filePath)
			}
		} else {
			log.Error(err.Error())
		}

		group.Done()
	}
}

func convertImage(filePath, format string) error {
	outputName := common.ReplaceFileExt(filePath, "."+format)
	if filePath == outputName {
		return fmt.Errorf("output file cannot be the same file as source file")
	}

	srcFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %s", filePath, err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("failed to open output file %s: %s", outputName, err)
	}
	defer dstFile.Close()

	reader := bufio.NewReader(srcFile)
	writer := bufio.NewWriter(dstFile)
	defer writer.Flush()

	_, err = common.ConvertImageTo(reader, writer, format)
	if err != nil {
		return fmt.Errorf("conversion failed %s: %s", filePath, err)
	}

	log.Debugf("convert: %s -> %s", filePath, outputName)

	return nil
}
