package tablekit

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
)

// Semantic categories returned by ColumnType.
const (
	TypeObject    = "object"
	TypeString    = "str"
	TypeJSON      = "json"
	TypeNDArray   = "ndarray"
	TypeSparse    = "sparse"
	TypeImage     = "image"
	TypeTimestamp = "timestamp"
	TypeDuration  = "duration"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ColumnType inspects a column and returns its coarse semantic category.
// Numeric and boolean columns report their dtype name directly. Text
// columns are classified by content: every non-null cell must land in the
// same category for it to win, anything mixed is "object". Columns of
// numeric text classify as "float". Empty and all-null columns classify
// as "object".
func ColumnType(s series.Series) string {
	if s.Len() == 0 {
		return TypeObject
	}
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
		return string(s.Type())
	}

	category := ""
	sawValue := false
	for i := 0; i < s.Len(); i++ {
		if s.Elem(i).IsNA() {
			continue
		}
		c := classifyCell(s.Elem(i).String())
		if !sawValue {
			category = c
			sawValue = true
			continue
		}
		if c != category {
			return TypeObject
		}
	}
	if !sawValue {
		return TypeObject
	}
	return category
}

func classifyCell(cell string) string {
	if isImage(cell) {
		return TypeImage
	}
	trimmed := strings.TrimSpace(cell)
	switch {
	case strings.HasPrefix(trimmed, "{"):
		if kind, ok := classifyJSONObject(trimmed); ok {
			return kind
		}
	case strings.HasPrefix(trimmed, "["):
		if kind, ok := classifyJSONArray(trimmed); ok {
			return kind
		}
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return TypeTimestamp
		}
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return "float"
	}
	if _, err := time.ParseDuration(trimmed); err == nil {
		return TypeDuration
	}
	return TypeString
}

func isImage(cell string) bool {
	if strings.HasPrefix(cell, "data:image/") {
		return true
	}
	magic := []string{"\x89PNG", "\xff\xd8\xff", "GIF87a", "GIF89a"}
	for _, m := range magic {
		if strings.HasPrefix(cell, m) {
			return true
		}
	}
	return false
}

// classifyJSONObject distinguishes a sparse-array encoding (an object
// carrying shape/indices/values keys) from a plain mapping.
func classifyJSONObject(cell string) (string, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cell), &m); err != nil {
		return "", false
	}
	_, hasShape := m["shape"]
	_, hasIndices := m["indices"]
	_, hasValues := m["values"]
	if hasShape && hasIndices && hasValues {
		return TypeSparse, true
	}
	return TypeJSON, true
}

// classifyJSONArray calls an array of equal-length numeric arrays an
// ndarray; any other valid array is plain json.
func classifyJSONArray(cell string) (string, bool) {
	var rows [][]float64
	if err := json.Unmarshal([]byte(cell), &rows); err == nil && len(rows) > 0 {
		width := len(rows[0])
		uniform := width > 0
		for _, row := range rows {
			if len(row) != width {
				uniform = false
				break
			}
		}
		if uniform {
			return TypeNDArray, true
		}
	}
	var v []interface{}
	if err := json.Unmarshal([]byte(cell), &v); err != nil {
		return "", false
	}
	return TypeJSON, true
}
