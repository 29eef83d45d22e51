package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/tempo/internal/storage"
)

// PlotSeries draws one series as an ASCII chart.
func PlotSeries(series []float64, caption string, width, height int) string {
	if len(series) == 0 {
		return caption + ": no samples\n"
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Gold,
	asciigraph.HotPink,
	asciigraph.LimeGreen,
	asciigraph.Orange,
	asciigraph.SkyBlue,
}

// PlotRun draws the named channels of a run on one chart. Channels share
// the vertical axis, so only channels of a similar scale read well
// together.
func PlotRun(run *storage.Run, channels []string, width, height int) (string, error) {
	if len(channels) == 0 {
		return "", fmt.Errorf("viz: no channels to plot")
	}
	data := make([][]float64, 0, len(channels))
	colors := make([]asciigraph.AnsiColor, 0, len(channels))
	for i, ch := range channels {
		s, err := run.Series(ch)
		if err != nil {
			return "", err
		}
		if len(s) == 0 {
			return "", fmt.Errorf("viz: channel %s has no samples", ch)
		}
		data = append(data, s)
		colors = append(colors, seriesColors[i%len(seriesColors)])
	}

	caption := fmt.Sprintf("%s (%.2fs @ %.0ffps)", strings.Join(channels, ", "), run.Duration(), run.FPS)
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	), nil
}
