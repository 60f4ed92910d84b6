package bundle

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/common"
)

func Cmd() *cli.Command {
	var srcPath string
	var saveAs string

	return &cli.Command{
		Name:  "bundle",
		Usage: "pack a plot directory into a gzip compressed tar archive",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "plot-dir",
				UsageText:   "<plot-dir>",
				Destination: &srcPath,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "output",
				UsageText:   "<output>",
				Destination: &saveAs,
				Max:         1,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			defaultOutputName := filepath.Base(srcPath) + ".tar.gz"

			saveAs = common.GetStrOr(saveAs, defaultOutputName)
			if stat, err := os.Stat(saveAs); err == nil && stat.IsDir() {
				saveAs = filepath.Join(saveAs, defaultOutputName)
			}

			return cmdMain(srcPath, saveAs)
		},
	}
}

func cmdMain(srcPath, saveAs string) error {
	stat, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("failed to access %s: %s", srcPath, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("plot-dir must be a directory: %s", srcPath)
	}

	outFile, err := os.Create(saveAs)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %s", saveAs, err)
	}
	defer outFile.Close()

	gzWriter := gzip.NewWriter(outFile)
	tarWriter := tar.NewWriter(gzWriter)

	fileCnt := 0
	err = filepath.WalkDir(srcPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcPath, path)
		if err != nil {
			return err
		}

		if err := addFile(tarWriter, path, relPath); err != nil {
			return err
		}
		fileCnt++

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to pack %s: %s", srcPath, err)
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish archive %s: %s", saveAs, err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish compression %s: %s", saveAs, err)
	}

	log.Infof("packed %d files into %s", fileCnt, saveAs)

	return nil
}

func addFile(tarWriter *tar.Writer, path, relPath string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(relPath)

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(tarWriter, file)
	return err
}
