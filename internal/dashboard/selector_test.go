package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectNoColumns(t *testing.T) {
	sel := Select(nil, nil, Request{X: "a", Y: "b"})
	assert.Equal(t, StateNoColumns, sel.State)
	assert.Equal(t, []Message{{Level: LevelError, Text: MsgNoColumns}}, sel.Messages)
	assert.Empty(t, sel.X)
	assert.Empty(t, sel.Y)
}

func TestSelectDefaults(t *testing.T) {
	sel := Select([]string{"business_id", "date", "date_count"}, []string{"date_count"}, Request{})
	assert.Equal(t, StateYSelected, sel.State)
	assert.Equal(t, "business_id", sel.X)
	assert.Equal(t, "date_count", sel.Y)
	assert.True(t, sel.YEnabled())
	assert.Empty(t, sel.Messages)
}

func TestSelectHonoursValidPicks(t *testing.T) {
	sel := Select([]string{"a", "b", "c"}, []string{"b", "c"}, Request{X: "c", Y: "c"})
	assert.Equal(t, "c", sel.X)
	assert.Equal(t, "c", sel.Y)
}

func TestSelectUnknownPickFallsBack(t *testing.T) {
	sel := Select([]string{"a", "b"}, []string{"b"}, Request{X: "zzz", Y: "a"})
	assert.Equal(t, "a", sel.X)
	assert.Equal(t, "b", sel.Y)
}

func TestSelectNoNumericDisablesY(t *testing.T) {
	sel := Select([]string{"a", "b"}, nil, Request{X: "b", Y: "a"})
	assert.Equal(t, StateYDisabled, sel.State)
	assert.Equal(t, "b", sel.X)
	assert.Empty(t, sel.Y)
	assert.False(t, sel.YEnabled())
	assert.Equal(t, []Message{{Level: LevelWarning, Text: MsgNoNumeric}}, sel.Messages)
}
