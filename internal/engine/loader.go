package engine

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"yelp-explorer/internal/dataset"
)

const (
	DefaultHandle = "yelp-dataset/yelp-dataset"
	DefaultFile   = "yelp_academic_dataset_checkin.json"

	DateColumn      = "date"
	DateCountColumn = "date_count"

	maxLineSize = 64 << 20
)

// Dataset is the memoized result of one load.
type Dataset struct {
	Table    *Table
	Numeric  []string
	Source   string
	LoadedAt time.Time
}

// Loader turns the published check-in file into a Dataset.
type Loader struct {
	fs      afero.Fs
	fetcher dataset.Fetcher
	handle  string
	file    string
	logger  log.Logger
}

func NewLoader(fs afero.Fs, fetcher dataset.Fetcher, handle, file string, logger log.Logger) *Loader {
	if handle == "" {
		handle = DefaultHandle
	}
	if file == "" {
		file = DefaultFile
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Loader{fs: fs, fetcher: fetcher, handle: handle, file: file, logger: logger}
}

// Load fetches the dataset, parses every line and derives date_count.
// Download failures come back as *dataset.DownloadError, malformed lines as
// *ParseError. Nothing is retried.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()

	// 1. Resolve a local directory
	dir, err := l.fetcher.Download(ctx, l.handle)
	if err != nil {
		var de *dataset.DownloadError
		if !errors.As(err, &de) {
			err = &dataset.DownloadError{Handle: l.handle, Err: err}
		}
		return nil, err
	}

	// 2. Parse the file
	path := filepath.Join(dir, l.file)
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset file")
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	// 3. Build the table and derived column
	table, err := NewTable(records)
	if err != nil {
		return nil, err
	}
	if table.Has(DateColumn) {
		if err := table.withIntColumn(DateCountColumn, DateCounts(records)); err != nil {
			return nil, err
		}
	}

	ds := &Dataset{
		Table:    table,
		Numeric:  table.NumericColumns(),
		Source:   path,
		LoadedAt: time.Now(),
	}

	for _, ct := range table.Types() {
		level.Info(l.logger).Log("msg", "column", "name", ct.Name, "dtype", ct.DType)
	}
	level.Info(l.logger).Log(
		"msg", "dataset loaded",
		"file", path,
		"rows", humanize.Comma(int64(table.NumRows())),
		"columns", len(table.Columns()),
		"numeric", strings.Join(ds.Numeric, ","),
		"took", time.Since(start),
	)
	return ds, nil
}

// ReadRecords parses newline-delimited JSON objects. The first malformed
// line aborts the read with a *ParseError carrying its 1-based number.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		rec, err := ParseRecord(scanner.Bytes())
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: line + 1, Err: err}
	}
	return records, nil
}

// DateCounts counts comma-separated timestamps in each record's date field.
// Records whose date is missing or not a string count 0.
func DateCounts(records []Record) []int {
	counts := make([]int, len(records))
	for i, r := range records {
		if v := r.Get(DateColumn); v.Kind == KindString {
			counts[i] = strings.Count(v.Str, ",") + 1
		}
	}
	return counts
}
