package record

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
)

// Header describes the run a trace was recorded from.
type Header struct {
	Scene   string             `json:"scene"`
	Script  string             `json:"script,omitempty"`
	Dt      float64            `json:"dt"`
	Steps   uint64             `json:"steps"`
	Anchors int                `json:"anchors"`
	Springs int                `json:"springs"`
	Culled  uint64             `json:"culled"`
	Metrics map[string]float64 `json:"metrics"`
}

// WriteCSV writes a trace with columns time, then name.x, name.y,
// name.vx and name.vy for each track.
func WriteCSV(out io.Writer, trace *Trace) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for _, name := range trace.Names {
		for _, c := range Components() {
			header = append(header, name+"."+c)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range trace.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, s := range trace.Samples[i] {
			for _, v := range []float64{s.Pos.X, s.Pos.Y, s.Vel.X, s.Vel.Y} {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

type exportData struct {
	Header
	Times  []float64             `json:"times"`
	Tracks map[string][]*float64 `json:"tracks"`
}

// WriteJSON writes the header together with every track series, keyed
// name.component. Samples of removed anchors become null.
func WriteJSON(w io.Writer, header Header, trace *Trace) error {
	data := exportData{
		Header: header,
		Times:  trace.Times,
		Tracks: make(map[string][]*float64),
	}
	for _, name := range trace.Names {
		for _, c := range Components() {
			series, err := trace.Series(name, c)
			if err != nil {
				return err
			}
			vals := make([]*float64, len(series))
			for i := range series {
				if !math.IsNaN(series[i]) {
					vals[i] = &series[i]
				}
			}
			data.Tracks[name+"."+c] = vals
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
