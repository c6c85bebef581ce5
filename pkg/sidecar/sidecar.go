// Package sidecar parses the optional .meta JSON file that rides along with a
// CSV and pins down column types the CSV itself cannot express.
//
// The sidecar is a JSON object with two keys: "index_names", an ordered list
// of column names forming the index, and "columns", a mapping from column
// name to a type descriptor. A descriptor is either a dtype string
// ("int64", "uint8", "float64", "bool", "object", "datetime64[ns]") or a
// three-element array ["category", levels, ordered].
package sidecar

import (
	"encoding/json"
	"time"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"github.com/bigmb/tablekit/pkg/errs"
)

const (
	DtypeInt64    = "int64"
	DtypeUint8    = "uint8"
	DtypeFloat64  = "float64"
	DtypeBool     = "bool"
	DtypeObject   = "object"
	DtypeDatetime = "datetime64[ns]"
	DtypeCategory = "category"
)

// datetime cells must match one of these layouts
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TypeSpec is one column's parsed type descriptor.
type TypeSpec struct {
	Dtype   string
	Levels  []string // category level set, in declared order
	Ordered bool     // whether the category levels are ordered
}

// Meta is a parsed sidecar.
type Meta struct {
	IndexNames []string
	Columns    map[string]TypeSpec
}

type rawMeta struct {
	IndexNames []string                   `json:"index_names"`
	Columns    map[string]json.RawMessage `json:"columns"`
}

// Parse decodes and validates sidecar content. Unknown dtype strings are
// rejected here rather than surfacing later as a half-typed table.
func Parse(data []byte) (*Meta, error) {
	var raw rawMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal sidecar metadata")
	}
	meta := &Meta{
		IndexNames: raw.IndexNames,
		Columns:    make(map[string]TypeSpec, len(raw.Columns)),
	}
	for name, desc := range raw.Columns {
		spec, err := parseTypeSpec(desc)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", name)
		}
		meta.Columns[name] = spec
	}
	return meta, nil
}

func parseTypeSpec(desc json.RawMessage) (TypeSpec, error) {
	var dtype string
	if err := json.Unmarshal(desc, &dtype); err == nil {
		switch dtype {
		case DtypeInt64, DtypeUint8, DtypeFloat64, DtypeBool, DtypeObject, DtypeDatetime:
			return TypeSpec{Dtype: dtype}, nil
		default:
			return TypeSpec{}, errs.BadFormat("unknown dtype for conversion %q", dtype)
		}
	}
	// not a string: must be ["category", levels, ordered]
	var parts []json.RawMessage
	if err := json.Unmarshal(desc, &parts); err != nil {
		return TypeSpec{}, errs.BadFormat("type descriptor must be a dtype string or a category triple")
	}
	if len(parts) != 3 {
		return TypeSpec{}, errs.BadFormat("category descriptor needs 3 elements, got %d", len(parts))
	}
	var kind string
	if err := json.Unmarshal(parts[0], &kind); err != nil || kind != DtypeCategory {
		return TypeSpec{}, errs.BadFormat("descriptor array must start with %q", DtypeCategory)
	}
	spec := TypeSpec{Dtype: DtypeCategory}
	if err := json.Unmarshal(parts[1], &spec.Levels); err != nil {
		return TypeSpec{}, errors.Wrap(err, "category levels")
	}
	if err := json.Unmarshal(parts[2], &spec.Ordered); err != nil {
		return TypeSpec{}, errors.Wrap(err, "category ordered flag")
	}
	return spec, nil
}

// SeriesTypes maps the sidecar dtypes onto gota series types, for use with
// dataframe.WithTypes. Datetime and category columns parse as strings and
// are validated cell-by-cell in Normalize.
func (m *Meta) SeriesTypes() map[string]series.Type {
	out := make(map[string]series.Type, len(m.Columns))
	for name, spec := range m.Columns {
		switch spec.Dtype {
		case DtypeInt64, DtypeUint8:
			out[name] = series.Int
		case DtypeFloat64:
			out[name] = series.Float
		case DtypeBool:
			out[name] = series.Bool
		default:
			out[name] = series.String
		}
	}
	return out
}

// Normalize rewrites cells in place so that the typed parse succeeds: the
// "True"/"False" tokens a strict CSV writer emits for bool columns become
// "true"/"false", and datetime/category cells are validated against their
// declared layout/levels. header names the columns of rows.
func (m *Meta) Normalize(header []string, rows [][]string) error {
	for name, spec := range m.Columns {
		col := indexOf(header, name)
		if col < 0 {
			return errs.MissingColumn("sidecar column %q not found in csv header", name)
		}
		switch spec.Dtype {
		case DtypeBool:
			for _, row := range rows {
				switch row[col] {
				case "True":
					row[col] = "true"
				case "False":
					row[col] = "false"
				}
			}
		case DtypeDatetime:
			for i, row := range rows {
				if isNull(row[col]) {
					continue
				}
				if !parsesAsDatetime(row[col]) {
					return errs.BadFormat("column %q row %d: %q is not a datetime", name, i, row[col])
				}
			}
		case DtypeCategory:
			levels := make(map[string]struct{}, len(spec.Levels))
			for _, l := range spec.Levels {
				levels[l] = struct{}{}
			}
			for i, row := range rows {
				if isNull(row[col]) {
					continue
				}
				if _, ok := levels[row[col]]; !ok {
					return errs.BadFormat("column %q row %d: %q is not a declared category level", name, i, row[col])
				}
			}
		}
	}
	return nil
}

func parsesAsDatetime(s string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isNull(s string) bool {
	return s == "" || s == "NaN"
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
