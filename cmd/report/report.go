package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/signintech/gopdf"
	"github.com/urfave/cli/v3"

	"github.com/lsst-desc/railplot/common"
	"github.com/lsst-desc/railplot/figure"
)

// gopdf can only embed jpeg and png data; figures of other types are
// skipped with a warning so the report never silently loses a plot.
var pageExts = []string{".jpg", ".jpeg", ".png"}

func Cmd() *cli.Command {
	var srcPath string
	var saveAs string

	return &cli.Command{
		Name:  "report",
		Usage: "collect saved figures into a single PDF, one page per figure",
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
			defaultOutputName := filepath.Base(srcPath) + ".pdf"

			saveAs = common.GetStrOr(saveAs, defaultOutputName)
			if stat, err := os.Stat(saveAs); err == nil && stat.IsDir() {
				saveAs = filepath.Join(saveAs, defaultOutputName)
			}

			return cmdMain(srcPath, saveAs)
		},
	}
}

// figurePage is one figure file destined for a report page.
type figurePage struct {
	path string
	// figure name, the file base without its extension
	name string
}

// collectFigurePages gathers the pageable figures in a plot directory, sorted
// by figure name so plotter/dataset combinations stay grouped.
func collectFigurePages(srcPath string) ([]figurePage, error) {
	entries, err := os.ReadDir(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plot directory %s: %s", srcPath, err)
	}

	pages := []figurePage{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		ext := strings.ToLower(filepath.Ext(fileName))
		if !slices.Contains(figure.AllFigTypes, strings.TrimPrefix(ext, ".")) {
			continue
		}
		if !slices.Contains(pageExts, ext) {
			log.Warnf("skipping figure %s, only jpeg and png figures can be paged", fileName)
			continue
		}

		pages = append(pages, figurePage{
			path: filepath.Join(srcPath, fileName),
			name: strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].name < pages[j].name })

	return pages, nil
}

func cmdMain(srcPath, saveAs string) error {
	pages, err := collectFigurePages(srcPath)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		log.Warnf("%s contains no figures", srcPath)
		return nil
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	added := 0
	bar := progressbar.Default(int64(len(pages)))
	for _, page := range pages {
		imgObj := new(gopdf.ImageObj)
		if err := imgObj.SetImagePath(page.path); err != nil {
			log.Warnf("error loading figure %s: %s", page.path, err)
			continue
		}

		pdf.AddPageWithOption(gopdf.PageOption{PageSize: imgObj.GetRect()})
		// Bookmark each page with the figure name so a reader can jump
		// straight to a plotter/dataset combination.
		pdf.AddOutline(page.name)

		if err := pdf.Image(page.path, 0, 0, imgObj.GetRect()); err != nil {
			log.Warnf("failed to add figure %s: %s", page.path, err)
			continue
		}
		added++

		bar.Add(1)
	}

	if added == 0 {
		return fmt.Errorf("none of the figures in %s could be paged", srcPath)
	}

	if err := pdf.WritePdf(saveAs); err != nil {
		return fmt.Errorf("failed to write file %s: %s", saveAs, err)
	}

	log.Infof("report with %d figures saved as: %s", added, saveAs)

	return nil
}
