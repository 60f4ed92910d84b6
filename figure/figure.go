package figure

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Default canvas size for saved figures.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4.5 * vg.Inch
)

// Figure types supported by the plot canvas.
var AllFigTypes = []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tif", "tiff"}

// Figure is one rendered plot together with its derived name.
type Figure struct {
	Name string
	Plot *plot.Plot
}

// Save writes the figure to `<dir>/<name>.<figtype>`, creating the directory
// when needed.
func (f Figure) Save(dir, figtype string) error {
	if !slices.Contains(AllFigTypes, figtype) {
		return fmt.Errorf("unknown figure type %s, supported types are %v", figtype, AllFigTypes)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %s", dir, err)
	}

	outPath := filepath.Join(dir, f.Name+"."+figtype)
	err := f.Plot.Save(DefaultWidth, DefaultHeight, outPath)
	if err != nil {
		return fmt.Errorf("failed to save figure %s: %s", outPath, err)
	}

	return nil
}

// WriteAll saves every figure in a map to the same directory.
func WriteAll(figs map[string]Figure, dir, figtype string) error {
	names := make([]string, 0, len(figs))
	for name := range figs {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := figs[name].Save(dir, figtype); err != nil {
			return err
		}
	}

	return nil
}
