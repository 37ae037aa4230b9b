package engine

import "github.com/go-gota/gota/series"

// KeyError reports a column that is not in the table.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string { return "'" + e.Key + "'" }

// CleanView is a two-column projection with null rows dropped and the row
// count capped. Every cell it holds is a value. It is rebuilt for every render and never shared.
type CleanView struct {
	XName, YName string
	XType, YType DType
	X, Y         series.Series

	// Available counts the rows with both cells present, before the cap.
	Available int
	Truncated bool
}

// Len is the number of rows kept in the view.
func (v *CleanView) Len() int {
	if v.Available == 0 {
		return 0
	}
	return v.X.Len()
}

// XAt returns the x cell of row i as a plain Go value.
func (v *CleanView) XAt(i int) interface{} { return cellValue(v.X.Elem(i), v.XType) }

// YAt returns the y cell of row i as a plain Go value.
func (v *CleanView) YAt(i int) interface{} { return cellValue(v.Y.Elem(i), v.YType) }

// Clean projects the table to columns x and y, drops rows where either is
// null and keeps the first limit rows in table order. x and y may name the
// same column. A limit of zero or less disables the cap.
func (t *Table) Clean(x, y string, limit int) (*CleanView, error) {
	xj, ok := t.index[x]
	if !ok {
		return nil, &KeyError{Key: x}
	}
	yj, ok := t.index[y]
	if !ok {
		return nil, &KeyError{Key: y}
	}

	xn, yn := t.nulls[xj], t.nulls[yj]
	keep := make([]int, 0, t.nrows)
	for i := 0; i < t.nrows; i++ {
		if xn[i] || yn[i] {
			continue
		}
		keep = append(keep, i)
	}

	v := &CleanView{
		XName:     x,
		YName:     y,
		XType:     t.types[xj],
		YType:     t.types[yj],
		Available: len(keep),
	}
	if len(keep) == 0 {
		return v, nil
	}
	if limit > 0 && len(keep) > limit {
		keep = keep[:limit]
		v.Truncated = true
	}
	v.X = t.cols[xj].Subset(keep)
	v.Y = t.cols[yj].Subset(keep)
	return v, nil
}
