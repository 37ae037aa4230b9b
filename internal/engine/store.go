package engine

import (
	"strconv"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// DType names the storage type inferred for a column.
type DType string

const (
	Int64   DType = "int64"
	Float64 DType = "float64"
	Bool    DType = "bool"
	Object  DType = "object"
)

// Numeric reports whether columns of this type can feed a quantitative axis.
// Only int64 and float64 qualify; bool stays out.
func (d DType) Numeric() bool { return d == Int64 || d == Float64 }

func (d DType) seriesType() series.Type {
	switch d {
	case Int64:
		return series.Int
	case Float64:
		return series.Float
	case Bool:
		return series.Bool
	default:
		return series.String
	}
}

// ColumnType pairs a column name with its inferred type.
type ColumnType struct {
	Name  string `json:"name"`
	DType DType  `json:"dtype"`
}

// Table holds parsed records column-wise, one gota series per column kept in
// step with names. Columns are addressed by position, never through gota's own
// column naming, so any JSON key (the empty string included) is a valid name.
// Nullness comes from the records themselves and is tracked in a mask beside
// each series: an object cell whose text happens to be "NaN" stays a value.
// A Table is never mutated once handed out by the loader.
type Table struct {
	names []string
	cols  []series.Series
	nulls [][]bool
	types []DType
	index map[string]int
	nrows int
}

// NewTable builds a Table from records. Columns appear in the order their
// keys are first seen; a record lacking a key gets a null cell.
func NewTable(records []Record) (*Table, error) {
	// 1. Column order
	var names []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, k := range r.Keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}

	t := &Table{
		index: make(map[string]int, len(names)),
		nrows: len(records),
	}

	// 2. Infer types and build one series per column
	cells := make([]Value, len(records))
	for _, name := range names {
		for i, r := range records {
			cells[i] = r.Get(name)
		}
		dt := inferDType(cells)
		s, nulls := buildSeries(name, dt, cells)
		if s.Err != nil {
			return nil, errors.Wrapf(s.Err, "build column %q", name)
		}
		t.add(name, dt, s, nulls)
	}
	return t, nil
}

func (t *Table) add(name string, dt DType, s series.Series, nulls []bool) {
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.types = append(t.types, dt)
	t.cols = append(t.cols, s)
	t.nulls = append(t.nulls, nulls)
}

// inferDType reduces a column to one type. All-null columns are object.
func inferDType(cells []Value) DType {
	var ints, floats, bools, other int
	for _, v := range cells {
		switch v.Kind {
		case KindNull:
		case KindInt:
			ints++
		case KindFloat:
			floats++
		case KindBool:
			bools++
		default:
			other++
		}
	}
	switch {
	case other > 0, bools > 0 && ints+floats > 0:
		return Object
	case bools > 0:
		return Bool
	case floats > 0:
		return Float64
	case ints > 0:
		return Int64
	default:
		return Object
	}
}

func buildSeries(name string, dt DType, cells []Value) (series.Series, []bool) {
	vals := make([]interface{}, len(cells))
	nulls := make([]bool, len(cells))
	for i, v := range cells {
		if v.IsNull() {
			nulls[i] = true
			continue // nil becomes a NaN element
		}
		switch dt {
		case Int64:
			vals[i] = int(v.Int)
		case Float64:
			if v.Kind == KindInt {
				vals[i] = float64(v.Int)
			} else {
				vals[i] = v.Float
			}
		case Bool:
			vals[i] = v.Bool
		default:
			vals[i] = v.text()
		}
	}
	return series.New(vals, dt.seriesType(), name), nulls
}

func (v Value) text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// withIntColumn sets an int64 column without nulls. An existing column of the
// same name is replaced in place; otherwise the column is appended.
func (t *Table) withIntColumn(name string, values []int) error {
	if len(values) != t.nrows {
		return errors.Errorf("column %q has %d values, table has %d rows", name, len(values), t.nrows)
	}
	s := series.New(values, series.Int, name)
	if s.Err != nil {
		return errors.Wrapf(s.Err, "set column %q", name)
	}
	nulls := make([]bool, t.nrows)
	if j, ok := t.index[name]; ok {
		t.cols[j], t.nulls[j], t.types[j] = s, nulls, Int64
		return nil
	}
	t.add(name, Int64, s, nulls)
	return nil
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) NumRows() int { return t.nrows }

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// DType returns the inferred type of a column.
func (t *Table) DType(name string) (DType, bool) {
	j, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.types[j], true
}

// Types lists every column with its type, in table order.
func (t *Table) Types() []ColumnType {
	out := make([]ColumnType, len(t.names))
	for j, n := range t.names {
		out[j] = ColumnType{Name: n, DType: t.types[j]}
	}
	return out
}

// NumericColumns returns the int64 and float64 columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for j, n := range t.names {
		if t.types[j].Numeric() {
			out = append(out, n)
		}
	}
	return out
}

// Rows returns up to limit rows starting at offset. Null cells are nil.
func (t *Table) Rows(offset, limit int) [][]interface{} {
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > t.nrows {
		end = t.nrows
	}
	if offset >= end {
		return [][]interface{}{}
	}

	rows := make([][]interface{}, 0, end-offset)
	for i := offset; i < end; i++ {
		row := make([]interface{}, len(t.cols))
		for j, col := range t.cols {
			if !t.nulls[j][i] {
				row[j] = cellValue(col.Elem(i), t.types[j])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// cellValue converts a gota element of a non-null cell back to a plain Go
// value. Object cells are read as text even when gota flags them NaN.
func cellValue(el series.Element, dt DType) interface{} {
	switch dt {
	case Int64:
		n, err := el.Int()
		if err != nil {
			return nil
		}
		return n
	case Float64:
		return el.Float()
	case Bool:
		b, err := el.Bool()
		if err != nil {
			return nil
		}
		return b
	default:
		return el.String()
	}
}
