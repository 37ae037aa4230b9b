// Package dashboard turns a loaded table and the user's current picks into
// what the page shows: selections, messages and an optional chart. Every
// function here is pure given its inputs.
package dashboard

const (
	MsgNoColumns      = "The dataset has no valid columns to visualize."
	MsgNoNumeric      = "No numeric columns available for Y-axis."
	MsgSelectBoth     = "Please select valid columns for both X and Y axes."
	MsgEmptyAfterDrop = "No data available after cleaning. Please adjust your selection."
)

// Level grades a Message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is shown in place of, or above, the chart.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Request carries the raw picks from the client; empty means no pick yet.
type Request struct {
	X string `query:"x"`
	Y string `query:"y"`
}

// Selection is the outcome of offering the column pickers.
type Selection struct {
	XOptions []string  `json:"x_options"`
	YOptions []string  `json:"y_options"`
	X        string    `json:"x"`
	Y        string    `json:"y"`
	State    State     `json:"state"`
	Messages []Message `json:"messages,omitempty"`
}

// YEnabled reports whether a Y picker is offered at all.
func (s Selection) YEnabled() bool { return len(s.YOptions) > 0 }

// Select offers every column for X and the numeric columns for Y, each
// defaulting to its first option. A pick that is not among the options falls
// back to the default, as a single-choice widget would.
func Select(columns, numeric []string, req Request) Selection {
	if len(columns) == 0 {
		return Selection{
			State:    StateNoColumns,
			Messages: []Message{{Level: LevelError, Text: MsgNoColumns}},
		}
	}

	sel := Selection{
		XOptions: columns,
		YOptions: numeric,
		X:        choose(columns, req.X),
		State:    StateXSelected,
	}
	if len(numeric) == 0 {
		sel.State = StateYDisabled
		sel.Messages = []Message{{Level: LevelWarning, Text: MsgNoNumeric}}
		return sel
	}
	sel.Y = choose(numeric, req.Y)
	sel.State = StateYSelected
	return sel
}

func choose(options []string, want string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	return options[0]
}
