// Package export writes rainflow counting results to CSV, JSON and HTML,
// mirroring the CLI-only file-writing concerns the spec places outside the
// counting engine's scope (section 1: "external collaborators").
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"html/template"
	"os"
	"strconv"
)

// Result is the flattened view of an Engine's accessors, independent of the
// rainflow package so export stays a pure file-writing concern.
type Result struct {
	ClassCount    int       `json:"class_count"`
	Matrix        []uint64  `json:"matrix"`
	RangePair     []uint64  `json:"range_pair"`
	LevelCrossing []uint64  `json:"level_crossing"`
	Damage        float64   `json:"damage"`
	DamageHistory []float64 `json:"damage_history,omitempty"`
	ClosedCycles  uint64    `json:"closed_cycles"`
	ResidueValues []float64 `json:"residue_values"`
}

// WriteCSV writes the rainflow matrix as class_count rows of class_count
// columns, one row per "from" class, preceded by two summary rows
// (closed_cycles, damage) and a header row of "to" class indices.
func WriteCSV(path string, r Result) error {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"closed_cycles", strconv.FormatUint(r.ClosedCycles, 10)}); err != nil {
		return err
	}
	if err := w.Write([]string{"damage", strconv.FormatFloat(r.Damage, 'g', -1, 64)}); err != nil {
		return err
	}

	header := make([]string, r.ClassCount+1)
	header[0] = "from\\to"
	for j := 0; j < r.ClassCount; j++ {
		header[j+1] = strconv.Itoa(j)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < r.ClassCount; i++ {
		row := make([]string, r.ClassCount+1)
		row[0] = strconv.Itoa(i)
		for j := 0; j < r.ClassCount; j++ {
			row[j+1] = strconv.FormatUint(r.Matrix[i*r.ClassCount+j], 10)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the full Result as pretty-printed JSON.
func WriteJSON(path string, r Result) error {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ClassIndices returns 0..ClassCount-1, for the HTML template's header row.
func (r Result) ClassIndices() []int {
	idx := make([]int, r.ClassCount)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// MatrixRows reshapes the flat row-major Matrix into ClassCount rows, for
// the HTML template.
func (r Result) MatrixRows() [][]uint64 {
	rows := make([][]uint64, r.ClassCount)
	for i := range rows {
		rows[i] = r.Matrix[i*r.ClassCount : (i+1)*r.ClassCount]
	}
	return rows
}

// WriteHTML writes a self-contained HTML summary report.
func WriteHTML(path string, r Result) error {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := reportTpl.Execute(&buf, r); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

var reportTpl = template.Must(template.New("rainflow-report").Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>Rainflow Report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2{margin:0 0 8px}
table{border-collapse:collapse;font-size:13px}
th,td{border:1px solid #ddd;padding:4px 6px;text-align:right}
.small{color:#555}
</style>

<h1>Rainflow Cycle-Counting Report</h1>
<p class="small">
Closed cycles: {{.ClosedCycles}} &nbsp;|&nbsp;
Pseudo-damage: {{printf "%.6e" .Damage}}
</p>

<h2>Rainflow matrix</h2>
<table>
<tr><th>from\to</th>{{range $j := .ClassIndices}}<th>{{$j}}</th>{{end}}</tr>
{{range $i, $row := .MatrixRows}}
<tr><th>{{$i}}</th>{{range $row}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</table>
</html>`))
