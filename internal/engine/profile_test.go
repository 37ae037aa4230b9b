package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	table, err := NewTable(mustRecords(t,
		`{"name":"a","score":1,"ratio":0.5}`,
		`{"name":"b","score":3}`,
		`{"score":null,"ratio":1.5}`,
	))
	require.NoError(t, err)

	profiles := table.Profile()
	require.Len(t, profiles, 3)

	name := profiles[0]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, Object, name.DType)
	assert.Equal(t, 2, name.NonNull)
	assert.Equal(t, 1, name.Nulls)
	assert.Nil(t, name.Min)

	score := profiles[1]
	assert.Equal(t, "score", score.Name)
	assert.Equal(t, Int64, score.DType)
	assert.Equal(t, 2, score.NonNull)
	require.NotNil(t, score.Mean)
	assert.Equal(t, 1.0, *score.Min)
	assert.Equal(t, 3.0, *score.Max)
	assert.Equal(t, 2.0, *score.Mean)

	ratio := profiles[2]
	assert.Equal(t, Float64, ratio.DType)
	assert.Equal(t, 1, ratio.Nulls)
	assert.InDelta(t, 1.0, *ratio.Mean, 1e-9)
}

func TestProfileSkipsNulls(t *testing.T) {
	table, err := NewTable(mustRecords(t, `{"a":1}`, `{"b":2}`))
	require.NoError(t, err)

	profiles := table.Profile()
	require.Len(t, profiles, 2)
	assert.Equal(t, 1, profiles[0].Nulls)
	assert.NotNil(t, profiles[0].Min)
}
