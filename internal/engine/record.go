package engine

import (
	"bytes"
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Kind tags the JSON type a cell was read from.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindObject // objects and arrays, kept as raw JSON text
)

// Value is one schema-on-read cell.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Record is one parsed line. Keys keeps first-seen field order.
type Record struct {
	Keys   []string
	Values map[string]Value
}

// Get returns the value stored under key, or a null Value.
func (r Record) Get(key string) Value {
	return r.Values[key]
}

// ParseError reports the first malformed line of the input.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errNotObject = errors.New("expected a JSON object")
	errInvalid   = errors.New("invalid JSON")
)

// ParseRecord decodes one NDJSON line into a Record.
func ParseRecord(line []byte) (Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || !sonic.Valid(line) {
		return Record{}, errInvalid
	}
	if line[0] != '{' {
		return Record{}, errNotObject
	}

	rec := Record{Values: make(map[string]Value)}
	err := jsonparser.ObjectEach(line, func(key, raw []byte, dataType jsonparser.ValueType, _ int) error {
		k, err := jsonparser.ParseString(key)
		if err != nil {
			return errors.Wrap(err, "decode key")
		}
		v, err := decodeValue(raw, dataType)
		if err != nil {
			return errors.Wrapf(err, "field %q", k)
		}
		// Duplicate keys keep their first position; the last value wins.
		if _, seen := rec.Values[k]; !seen {
			rec.Keys = append(rec.Keys, k)
		}
		rec.Values[k] = v
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func decodeValue(raw []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.Null:
		return Value{Kind: KindNull}, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case jsonparser.Number:
		return decodeNumber(raw)
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBool, Bool: b}, nil
	case jsonparser.Object, jsonparser.Array:
		return Value{Kind: KindObject, Str: string(raw)}, nil
	default:
		return Value{}, errors.Errorf("unsupported JSON value %q", raw)
	}
}

// decodeNumber keeps integral literals as int64 and falls back to float64
// for fractions, exponents and integers that overflow.
func decodeNumber(raw []byte) (Value, error) {
	s := string(raw)
	if !bytes.ContainsAny(raw, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Value{Kind: KindInt, Int: n}, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, err
	}
	return Value{Kind: KindFloat, Float: f}, nil
}
