// Package chart renders daily points and the weekly trend line into PNG
// files.
package chart

import (
	"fmt"
	"image/color"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/jgehrcke/runni/internal/trend"
)

type Renderer struct {
	log    *logrus.Logger
	outDir string
	now    func() time.Time
}

func NewRenderer(log *logrus.Logger, outDir string) *Renderer {
	return &Renderer{
		log:    log,
		outDir: outDir,
		now:    time.Now,
	}
}

// Render writes one chart: the raw per-day series as gray cross markers and
// the rolling per-week series as a black line, on a shared time axis. The
// returned path is empty when both series are empty; an empty log renders
// nothing rather than failing.
func (r *Renderer) Render(daily, weekly trend.Series, windowDays int, title, yLabel, seriesName string) (string, error) {
	dailyXYs := seriesXYs(daily)
	weeklyXYs := seriesXYs(weekly)
	if len(dailyXYs) == 0 && len(weeklyXYs) == 0 {
		r.log.Warnf("no data for %q, skipping chart", title)
		return "", nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	line, err := plotter.NewLine(weeklyXYs)
	if err != nil {
		return "", fmt.Errorf("build trend line: %w", err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.Black

	scatter, err := plotter.NewScatter(dailyXYs)
	if err != nil {
		return "", fmt.Errorf("build daily scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CrossGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.Gray{Y: 0x80}

	p.Add(line, scatter)
	p.Legend.Add(fmt.Sprintf("%s per week, rolling window mean (%d days)", seriesName, windowDays), line)
	p.Legend.Add(fmt.Sprintf("%s per day (raw data)", seriesName), scatter)
	p.Legend.Top = true

	path := filepath.Join(r.outDir, r.filename(title))
	r.log.Infof("writing PNG figure to %s", path)
	if err := p.Save(10.5*vg.Inch, 7*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save figure: %w", err)
	}
	return path, nil
}

func (r *Renderer) filename(title string) string {
	return fmt.Sprintf("%s_%s.png", r.now().UTC().Format("2006-01-02"), Slugify(title))
}

var nonSlug = regexp.MustCompile("[^a-z0-9]+")

// Slugify lowercases the title and collapses every non-alphanumeric run
// into a single dash.
func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// seriesXYs converts a series to plot coordinates, dropping NaN points
// (days without a defined value).
func seriesXYs(s trend.Series) plotter.XYs {
	xys := make(plotter.XYs, 0, len(s))
	for _, p := range s {
		if !p.Defined() {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(p.Date.Unix()), Y: p.Value})
	}
	return xys
}
