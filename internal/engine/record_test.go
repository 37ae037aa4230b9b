package engine

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordKeepsKeyOrderAndKinds(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"b":1,"a":"x\"y","c":2.5,"d":null,"e":true,"f":{"k":[1,2]},"g":[3],"h":1e3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c", "d", "e", "f", "g", "h"}, rec.Keys)
	assert.Equal(t, Value{Kind: KindInt, Int: 1}, rec.Get("b"))
	assert.Equal(t, Value{Kind: KindString, Str: `x"y`}, rec.Get("a"))
	assert.Equal(t, Value{Kind: KindFloat, Float: 2.5}, rec.Get("c"))
	assert.True(t, rec.Get("d").IsNull())
	assert.Equal(t, Value{Kind: KindBool, Bool: true}, rec.Get("e"))
	assert.Equal(t, Value{Kind: KindObject, Str: `{"k":[1,2]}`}, rec.Get("f"))
	assert.Equal(t, KindObject, rec.Get("g").Kind)
	assert.Equal(t, Value{Kind: KindFloat, Float: 1000}, rec.Get("h"))
	assert.True(t, rec.Get("missing").IsNull())
}

func TestParseRecordDuplicateKeyLastWins(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.Keys)
	assert.Equal(t, int64(3), rec.Get("a").Int)
}

func TestParseRecordLargeIntegerBecomesFloat(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"n":123456789012345678901234567890}`))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, rec.Get("n").Kind)
}

func TestParseRecordRejectsInvalidLines(t *testing.T) {
	for _, line := range []string{``, `   `, `{"a":`, `not json`, `[1,2]`, `"str"`, `42`, `{"a":1} trailing`} {
		_, err := ParseRecord([]byte(line))
		assert.Error(t, err, "line %q", line)
	}
}

func TestReadRecordsCountsLines(t *testing.T) {
	input := `{"business_id":"a","date":"t1,t2,t3"}
{"business_id":"b"}
{"business_id":"c","date":null}
`
	records, err := ReadRecords(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestReadRecordsAbortsOnFirstBadLine(t *testing.T) {
	input := "{\"a\":1}\n{\"a\":\n{\"a\":2}\n"
	records, err := ReadRecords(strings.NewReader(input))
	assert.Nil(t, records)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Error(), "line 2")
}

func TestReadRecordsBlankLineIsAnError(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("{\"a\":1}\n\n{\"a\":2}\n"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
}

func TestDateCounts(t *testing.T) {
	records := []Record{
		mustRecord(t, `{"date":"t1,t2,t3"}`),
		mustRecord(t, `{"business_id":"b"}`),
		mustRecord(t, `{"date":null}`),
		mustRecord(t, `{"date":17}`),
		mustRecord(t, `{"date":""}`),
		mustRecord(t, `{"date":"2011-01-01 00:00:00"}`),
	}
	assert.Equal(t, []int{3, 0, 0, 0, 1, 1}, DateCounts(records))
}

func mustRecord(t *testing.T, line string) Record {
	t.Helper()
	rec, err := ParseRecord([]byte(line))
	require.NoError(t, err)
	return rec
}

func mustRecords(t *testing.T, lines ...string) []Record {
	t.Helper()
	out := make([]Record, len(lines))
	for i, l := range lines {
		out[i] = mustRecord(t, l)
	}
	return out
}
