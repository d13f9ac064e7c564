package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

type ExportData struct {
	Setpoint float64            `json:"setpoint"`
	Dt       float64            `json:"dt"`
	Lag      int                `json:"lag"`
	Steps    int                `json:"steps"`
	Gains    fopdt.Gains        `json:"gains"`
	Times    []float64          `json:"t"`
	Error    []float64          `json:"e"`
	Integral []float64          `json:"s"`
	Output   []float64          `json:"u"`
	Process  []float64          `json:"y"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

var csvHeader = []string{"t", "e", "s", "u", "y"}

// WriteCSV writes one row per sample with columns t, e, s, u, y.
func WriteCSV(w io.Writer, tr *fopdt.Trace) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for i := 0; i < tr.Len(); i++ {
		s := tr.Sample(i)
		for j, v := range []float64{s.T, s.E, s.S, s.U, s.Y} {
			row[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the trace, the gains it was run with and any metrics
// as one indented JSON document.
func WriteJSON(w io.Writer, tr *fopdt.Trace, g fopdt.Gains, metrics map[string]float64) error {
	data := ExportData{
		Setpoint: tr.Setpoint,
		Dt:       tr.Dt,
		Lag:      tr.Lag,
		Steps:    tr.Len(),
		Gains:    g,
		Times:    tr.T,
		Error:    tr.E,
		Integral: tr.S,
		Output:   tr.U,
		Process:  tr.Y,
		Metrics:  metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write dispatches on format, "csv" or "json".
func Write(w io.Writer, format string, tr *fopdt.Trace, g fopdt.Gains, metrics map[string]float64) error {
	switch format {
	case "csv":
		return WriteCSV(w, tr)
	case "json":
		return WriteJSON(w, tr, g, metrics)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}
