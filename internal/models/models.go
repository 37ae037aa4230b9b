package models

import "yelp-explorer/internal/engine"

type ColumnsResponse struct {
	Columns []string            `json:"columns"`
	Numeric []string            `json:"numeric_columns"`
	Types   []engine.ColumnType `json:"types"`
	Rows    int                 `json:"rows"`
}

type PreviewPage struct {
	Columns []string        `json:"columns"`
	Data    [][]interface{} `json:"data"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type ProfileResponse struct {
	Columns []engine.ColumnProfile `json:"columns"`
}

type ReloadResponse struct {
	Invalidated bool `json:"invalidated"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
