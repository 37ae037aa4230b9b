package dashboard

import (
	"fmt"

	"github.com/pkg/errors"

	"yelp-explorer/internal/engine"
)

// MaxChartRows caps the points handed to the chart.
const MaxChartRows = 5000

// State names where a render pass ended up.
type State string

const (
	StateNoColumns       State = "no-columns-error"
	StateXSelected       State = "x-selected"
	StateYSelected       State = "y-selected"
	StateYDisabled       State = "y-disabled"
	StateNoSelection     State = "no-selection-warning"
	StateEmptyAfterClean State = "empty-after-clean-warning"
	StateChartShown      State = "chart-shown"
	StateKeyError        State = "key-error-shown"
	StateGenericError    State = "generic-error-shown"
)

// View is everything the chart area needs for one render pass.
type View struct {
	Selection Selection `json:"selection"`
	State     State     `json:"state"`
	Messages  []Message `json:"messages"`
	Chart     *Chart    `json:"chart,omitempty"`
	Points    int       `json:"points"`

	Clean *engine.CleanView `json:"-"`
}

// Page runs the selector and then the renderer. When Y cannot be picked the
// render attempt still reports its own warning, but the pass ends in
// StateYDisabled.
func Page(table *engine.Table, numeric []string, req Request) View {
	sel := Select(table.Columns(), numeric, req)
	if sel.State == StateNoColumns {
		return View{Selection: sel, State: sel.State, Messages: sel.Messages}
	}

	v := Render(table, sel.X, sel.Y)
	v.Selection = sel
	v.Messages = append(append([]Message(nil), sel.Messages...), v.Messages...)
	if sel.State == StateYDisabled {
		v.State = StateYDisabled
	}
	return v
}

// Render validates the picks, cleans the two columns and builds the chart.
// Failures while building are reported as messages; Render never panics.
func Render(table *engine.Table, x, y string) (v View) {
	if x == "" || y == "" {
		return warn(StateNoSelection, MsgSelectBoth)
	}

	defer func() {
		if r := recover(); r != nil {
			v = View{
				State:    StateGenericError,
				Messages: []Message{{Level: LevelError, Text: fmt.Sprintf("Error generating chart: %v", r)}},
			}
		}
	}()

	view, err := table.Clean(x, y, MaxChartRows)
	if err != nil {
		return failed(err)
	}
	if view.Len() == 0 {
		return warn(StateEmptyAfterClean, MsgEmptyAfterDrop)
	}

	var msgs []Message
	if view.Truncated {
		msgs = append(msgs, Message{
			Level: LevelWarning,
			Text:  fmt.Sprintf("Dataset is too large; only visualizing the first %d rows.", MaxChartRows),
		})
	}

	chart, err := BuildChart(view)
	if err != nil {
		return failed(err)
	}
	return View{
		State:    StateChartShown,
		Messages: msgs,
		Chart:    chart,
		Points:   view.Len(),
		Clean:    view,
	}
}

func warn(state State, text string) View {
	return View{State: state, Messages: []Message{{Level: LevelWarning, Text: text}}}
}

func failed(err error) View {
	var ke *engine.KeyError
	if errors.As(err, &ke) {
		return View{
			State:    StateKeyError,
			Messages: []Message{{Level: LevelError, Text: fmt.Sprintf("KeyError: %s. Please check the column names.", ke)}},
		}
	}
	return View{
		State:    StateGenericError,
		Messages: []Message{{Level: LevelError, Text: fmt.Sprintf("Error generating chart: %v", err)}},
	}
}
