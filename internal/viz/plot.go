package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// Series names one waveform of a trace.
type Series struct {
	Caption string
	Data    []float64
}

// Waveforms returns the four plotted series in display order.
func Waveforms(tr *fopdt.Trace) []Series {
	return []Series{
		{"feedback error", tr.E},
		{"pid integral", tr.S},
		{"pid output", tr.U},
		{"fopdt output", tr.Y},
	}
}

// Plot renders each waveform as an ASCII chart, separated by blank lines.
func Plot(tr *fopdt.Trace, width, height int) string {
	if width <= 0 {
		width = plotWidth
	}
	if height <= 0 {
		height = plotHeight
	}

	var sb strings.Builder
	for _, s := range Waveforms(tr) {
		if len(s.Data) == 0 {
			continue
		}
		graph := asciigraph.Plot(s.Data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(s.Caption),
		)
		sb.WriteString(graph)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
