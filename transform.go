package tablekit

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"github.com/bigmb/tablekit/pkg/errs"
	"github.com/bigmb/tablekit/pkg/globalstats"
)

// KeepPolicy selects which occurrence of a duplicate row survives a drop.
type KeepPolicy int

const (
	// KeepFirst retains the first occurrence of each duplicate group.
	KeepFirst KeepPolicy = iota
	// KeepNone drops every row that has a duplicate, first occurrence included.
	KeepNone
)

// WithKeep sets the duplicate retention policy for CheckDropDuplicates.
func WithKeep(keep KeepPolicy) Option {
	return func(c *config) { c.keep = keep }
}

// CheckNull counts nulls per column and, when fill is set, replaces nulls
// in numeric columns with zero. Non-numeric columns are reported but left
// untouched. The returned map holds null counts for columns that had any.
func CheckNull(df dataframe.DataFrame, fill bool, opts ...Option) (dataframe.DataFrame, map[string]int, error) {
	cfg := newConfig(opts)
	counts := make(map[string]int)

	for _, name := range df.Names() {
		s := df.Col(name)
		n := 0
		for i := 0; i < s.Len(); i++ {
			if s.Elem(i).IsNA() {
				n++
			}
		}
		if n == 0 {
			continue
		}
		counts[name] = n
		cfg.logger.Log("column %{column}s has %d null values", name, n)

		if !fill {
			continue
		}
		var zero string
		switch s.Type() {
		case series.Int:
			zero = "0"
		case series.Float:
			zero = "0.0"
		default:
			cfg.logger.Log("column %{column}s is not numeric, leaving nulls in place", name)
			continue
		}
		recs := s.Records()
		for i := 0; i < s.Len(); i++ {
			if s.Elem(i).IsNA() {
				recs[i] = zero
			}
		}
		out := df.Mutate(series.New(recs, s.Type(), name))
		if out.Err != nil {
			return df, counts, errors.Wrapf(out.Err, "fill column %q", name)
		}
		df = out
	}
	return df, counts, nil
}

// RemoveUnnamed drops every column whose name matches the auto-index
// pattern. Applying it twice is the same as applying it once.
func RemoveUnnamed(df dataframe.DataFrame, opts ...Option) dataframe.DataFrame {
	return dropUnnamed(df, newConfig(opts))
}

// RenameColumn renames a single column, failing if oldName is absent.
func RenameColumn(df dataframe.DataFrame, oldName, newName string, opts ...Option) (dataframe.DataFrame, error) {
	cfg := newConfig(opts)
	if indexOf(df.Names(), oldName) < 0 {
		return df, errs.MissingColumn("column %q not found in table", oldName)
	}
	// column names stay unique
	if newName != oldName && indexOf(df.Names(), newName) >= 0 {
		return df, errs.BadRequest("column %q already exists in table", newName)
	}
	cfg.logger.Log("renaming column %{old}s to %{new}s", oldName, newName)
	out := df.Rename(newName, oldName)
	if out.Err != nil {
		return df, errors.Wrapf(out.Err, "rename %q to %q", oldName, newName)
	}
	return out, nil
}

// CheckDropDuplicates finds rows that are duplicated with respect to the
// given columns. All occurrences count as duplicates, not just the second
// and later ones. When drop is set the duplicates are removed per the
// configured KeepPolicy (KeepFirst by default). The returned slice holds
// the duplicate row indices of the input frame.
func CheckDropDuplicates(df dataframe.DataFrame, columns []string, drop bool, opts ...Option) (dataframe.DataFrame, []int, error) {
	cfg := newConfig(opts)
	if len(columns) == 0 {
		columns = df.Names()
	}
	for _, col := range columns {
		if indexOf(df.Names(), col) < 0 {
			return df, nil, errs.MissingColumn("column %q not found in table", col)
		}
	}

	sub := df.Select(columns)
	if sub.Err != nil {
		return df, nil, errors.Wrap(sub.Err, "select duplicate-check columns")
	}
	rows := sub.Records()[1:]

	keys := make([]string, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		key := strings.Join(row, "\x1f")
		keys[i] = key
		seen[key]++
	}

	var dupIdx []int
	for i, key := range keys {
		if seen[key] > 1 {
			dupIdx = append(dupIdx, i)
		}
	}
	if len(dupIdx) == 0 {
		return df, nil, nil
	}
	cfg.logger.Log("found %d duplicate rows over columns %v", len(dupIdx), columns)
	globalstats.Incr("duplicate_rows_found")

	if !drop {
		return df, dupIdx, nil
	}

	first := make(map[string]int, len(seen))
	var keepIdx []int
	for i, key := range keys {
		switch {
		case seen[key] == 1:
			keepIdx = append(keepIdx, i)
		case cfg.keep == KeepFirst:
			if _, ok := first[key]; !ok {
				first[key] = i
				keepIdx = append(keepIdx, i)
			}
		}
	}

	out := df.Subset(keepIdx)
	if out.Err != nil {
		return df, dupIdx, errors.Wrap(out.Err, "drop duplicate rows")
	}
	cfg.logger.Log("dropped %d rows, %d remain", df.Nrow()-out.Nrow(), out.Nrow())
	return out, dupIdx, nil
}
