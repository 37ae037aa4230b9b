package dashboard

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"yelp-explorer/internal/engine"
)

const (
	pngWidth  = 960
	pngHeight = 540

	// maxCategoryTicks bounds how many category labels an ordinal axis gets.
	maxCategoryTicks = 25
)

var pointColor = drawing.ColorFromHex("4c78a8")

// RenderPNG draws a shown chart as a static scatter plot. Non-numeric
// columns are laid out at ordinal positions in order of first appearance.
func RenderPNG(w io.Writer, v View) error {
	if v.State != StateChartShown || v.Clean == nil {
		return errors.Errorf("no chart to render in state %s", v.State)
	}
	cv := v.Clean

	xs, xTicks, xRange := axisValues(cv.Len(), cv.XAt, cv.XType)
	ys, yTicks, yRange := axisValues(cv.Len(), cv.YAt, cv.YType)

	ch := chart.Chart{
		Width:      pngWidth,
		Height:     pngHeight,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: cv.XName, Ticks: xTicks, Range: xRange},
		YAxis:      chart.YAxis{Name: cv.YName, Ticks: yTicks, Range: yRange},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    cv.YName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColor:    pointColor,
				},
			},
		},
	}
	return errors.Wrap(ch.Render(chart.PNG, w), "render png")
}

// axisValues maps one column onto float positions. Numeric columns keep their
// values; others get 1-based category indexes with labelled ticks when there
// are few enough categories. A degenerate range is padded so go-chart can
// draw a single distinct value.
func axisValues(n int, at func(int) interface{}, dt engine.DType) ([]float64, []chart.Tick, chart.Range) {
	vals := make([]float64, n)
	var ticks []chart.Tick

	if dt.Numeric() {
		for i := range vals {
			switch c := at(i).(type) {
			case int:
				vals[i] = float64(c)
			case float64:
				vals[i] = c
			}
		}
	} else {
		index := make(map[string]float64)
		var labels []string
		for i := range vals {
			key := fmt.Sprint(at(i))
			pos, ok := index[key]
			if !ok {
				labels = append(labels, key)
				pos = float64(len(labels))
				index[key] = pos
			}
			vals[i] = pos
		}
		if len(labels) <= maxCategoryTicks {
			for i, l := range labels {
				ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: l})
			}
		}
	}

	lo, hi := vals[0], vals[0]
	for _, f := range vals[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	if !dt.Numeric() || lo == hi {
		return vals, ticks, &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
	}
	return vals, ticks, nil
}
