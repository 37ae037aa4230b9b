package dashboard

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChartEncoding(t *testing.T) {
	table := checkinTable(t)
	view, err := table.Clean("business_id", "date_count", MaxChartRows)
	require.NoError(t, err)

	c, err := BuildChart(view)
	require.NoError(t, err)

	assert.Equal(t, Mark{Type: "circle", Size: 60}, c.Mark)
	assert.Equal(t, Channel{Field: "business_id", Type: "nominal", Title: "business_id"}, c.Encoding.X)
	assert.Equal(t, Channel{Field: "date_count", Type: "quantitative", Title: "date_count"}, c.Encoding.Y)
	assert.Equal(t, []Channel{c.Encoding.X, c.Encoding.Y}, c.Encoding.Tooltip)
	assert.Equal(t, []Param{{Name: "pan_zoom", Select: "interval", Bind: "scales"}}, c.Params)
}

func TestBuildChartEscapesFieldNames(t *testing.T) {
	table := tableFrom(t, "{\"hours.Monday\":1,\"a[0]\":2}\n")
	view, err := table.Clean("hours.Monday", "a[0]", MaxChartRows)
	require.NoError(t, err)

	c, err := BuildChart(view)
	require.NoError(t, err)
	assert.Equal(t, `hours\.Monday`, c.Encoding.X.Field)
	assert.Equal(t, "hours.Monday", c.Encoding.X.Title)
	assert.Equal(t, `a\[0\]`, c.Encoding.Y.Field)
	assert.Contains(t, c.Data.Values[0], "hours.Monday")
}

func TestChartMarshalsAsVegaLite(t *testing.T) {
	v := Render(checkinTable(t), "business_id", "date_count")
	require.NotNil(t, v.Chart)

	raw, err := json.Marshal(v.Chart)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, vegaLiteSchema, doc["$schema"])
	assert.Equal(t, "container", doc["width"])
	assert.Len(t, doc["data"].(map[string]interface{})["values"], 2)
}
