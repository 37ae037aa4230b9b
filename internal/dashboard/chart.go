package dashboard

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"yelp-explorer/internal/engine"
)

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// Chart is a Vega-Lite scatter specification, ready for vega-embed.
type Chart struct {
	Schema   string    `json:"$schema"`
	Width    string    `json:"width"`
	Data     ChartData `json:"data"`
	Mark     Mark      `json:"mark"`
	Encoding Encoding  `json:"encoding"`
	Params   []Param   `json:"params"`
}

type ChartData struct {
	Values []map[string]interface{} `json:"values"`
}

type Mark struct {
	Type string `json:"type"`
	Size int    `json:"size"`
}

type Encoding struct {
	X       Channel   `json:"x"`
	Y       Channel   `json:"y"`
	Tooltip []Channel `json:"tooltip"`
}

type Channel struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// Param binds an interval selection to the scales, which gives pan and zoom.
type Param struct {
	Name   string `json:"name"`
	Select string `json:"select"`
	Bind   string `json:"bind"`
}

// BuildChart makes a circle-mark scatter of the clean view with tooltips for
// both raw values.
func BuildChart(view *engine.CleanView) (*Chart, error) {
	values := make([]map[string]interface{}, view.Len())
	for i := range values {
		xv, yv := view.XAt(i), view.YAt(i)
		for _, cell := range []interface{}{xv, yv} {
			if f, ok := cell.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				return nil, errors.Errorf("row %d holds a non-finite value", i)
			}
		}
		values[i] = map[string]interface{}{view.XName: xv, view.YName: yv}
	}

	x := Channel{Field: fieldRef(view.XName), Type: encodingType(view.XType), Title: view.XName}
	y := Channel{Field: fieldRef(view.YName), Type: encodingType(view.YType), Title: view.YName}
	return &Chart{
		Schema: vegaLiteSchema,
		Width:  "container",
		Data:   ChartData{Values: values},
		Mark:   Mark{Type: "circle", Size: 60},
		Encoding: Encoding{
			X:       x,
			Y:       y,
			Tooltip: []Channel{x, y},
		},
		Params: []Param{{Name: "pan_zoom", Select: "interval", Bind: "scales"}},
	}, nil
}

func encodingType(dt engine.DType) string {
	if dt.Numeric() {
		return "quantitative"
	}
	return "nominal"
}

var fieldEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `[`, `\[`, `]`, `\]`)

// fieldRef escapes characters Vega-Lite reads as nested field access.
func fieldRef(name string) string { return fieldEscaper.Replace(name) }
