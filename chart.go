package deckfill

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

var chartNamePattern = regexp.MustCompile(`[<>:"/\\|?*]`)

// sanitizeChartName makes a sheet or chart name safe for a file name,
// truncated to 50 characters.
func sanitizeChartName(name string) string {
	s := chartNamePattern.ReplaceAllString(name, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// ChartImageName builds the scratch file name for one exported chart.
func ChartImageName(sheet, chart string, index int) string {
	return fmt.Sprintf("%s_%s_%d.png", sanitizeChartName(sheet), sanitizeChartName(chart), index)
}

// ExportAllCharts exports every spreadsheet chart to PNG files in a scratch
// directory and returns the written paths keyed by sheet name. When dir is
// empty a unique directory under the OS temp dir is created. Backends
// without chart rendering degrade to an empty result.
func ExportAllCharts(sp SpreadsheetSession, dir string, log *slog.Logger) (map[string][]string, string, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "deckfill_charts_"+uuid.NewString())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dir, fmt.Errorf("create chart scratch dir: %w", err)
	}
	charts, err := sp.ExportCharts(dir)
	if err != nil {
		if IsUnsupported(err) {
			log.Debug("chart export unsupported by backend")
			return map[string][]string{}, dir, nil
		}
		return nil, dir, fmt.Errorf("export charts: %w", err)
	}
	total := 0
	for _, paths := range charts {
		total += len(paths)
	}
	log.Info("charts exported", "count", total, "dir", dir)
	return charts, dir, nil
}

// FreezeCharts converts every live chart shape on a slide into a flattened
// picture, restoring the chart's captured geometry afterwards. Duplicated
// loop slides would otherwise all share one data-linked chart object.
// Failing charts are skipped; one bad chart never aborts the rest. Returns
// the number of charts frozen.
func FreezeCharts(slide Slide, log *slog.Logger) int {
	var charts []ChartShape
	for _, shape := range slide.Shapes() {
		if cs, ok := shape.(ChartShape); ok {
			charts = append(charts, cs)
		}
	}
	frozen := 0
	for _, cs := range charts {
		g := cs.Geometry()
		pic, err := slide.ConvertChartToPicture(cs)
		if err != nil {
			log.Warn("chart freeze failed", "slide", slide.Index(), "chart", cs.ChartName(), "error", err)
			continue
		}
		if err := pic.SetGeometry(g); err != nil {
			log.Debug("restore chart geometry failed", "chart", cs.ChartName(), "error", err)
		}
		frozen++
	}
	if frozen > 0 {
		log.Debug("charts frozen", "slide", slide.Index(), "count", frozen)
	}
	return frozen
}
