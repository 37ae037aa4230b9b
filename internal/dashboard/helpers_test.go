package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"yelp-explorer/internal/engine"
)

// checkinTable is the two-line check-in sample with date_count derived.
func checkinTable(t *testing.T) *engine.Table {
	t.Helper()
	return tableFrom(t, `{"business_id":"a","date":"t1,t2,t3","date_count":3}
{"business_id":"b","date_count":0}
`)
}

func tableFrom(t *testing.T, ndjson string) *engine.Table {
	t.Helper()
	records, err := engine.ReadRecords(strings.NewReader(ndjson))
	require.NoError(t, err)
	table, err := engine.NewTable(records)
	require.NoError(t, err)
	return table
}
