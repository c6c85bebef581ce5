package tablekit

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/bigmb/tablekit/pkg/errs"
)

func TestCheckNull(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"1", "NaN", "3"}, series.Int, "a"),
		series.New([]string{"1.5", "NaN", "NaN"}, series.Float, "b"),
		series.New([]string{"x", "NaN", "z"}, series.String, "c"),
	)
	require.NoError(t, df.Err)

	_, counts, err := CheckNull(df, false)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"a": 1, "b": 2, "c": 1}, counts)

	filled, _, err := CheckNull(df, true)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "0", "3"}, filled.Col("a").Records())
	require.Equal(t, []string{"1.500000", "0.000000", "0.000000"}, filled.Col("b").Records())
	// non-numeric columns keep their nulls
	require.True(t, filled.Col("c").Elem(1).IsNA())
}

func TestCheckNullClean(t *testing.T) {
	df := dataframe.New(series.New([]int{1, 2, 3}, series.Int, "a"))
	require.NoError(t, df.Err)

	_, counts, err := CheckNull(df, true)
	require.NoError(t, err)
	require.Empty(t, counts)
}

func TestRenameColumn(t *testing.T) {
	df := dataframe.New(series.New([]int{1, 2}, series.Int, "old"))
	require.NoError(t, df.Err)

	renamed, err := RenameColumn(df, "old", "new")
	require.NoError(t, err)
	require.Equal(t, []string{"new"}, renamed.Names())

	_, err = RenameColumn(df, "missing", "new")
	var colErr *errs.ColumnError
	require.ErrorAs(t, err, &colErr)
}

func TestRenameColumnCollision(t *testing.T) {
	df := dataframe.New(
		series.New([]int{1}, series.Int, "a"),
		series.New([]int{2}, series.Int, "b"),
	)
	require.NoError(t, df.Err)

	_, err := RenameColumn(df, "a", "b")
	var reqErr *errs.BadRequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestCheckDropDuplicates(t *testing.T) {
	df := dataframe.New(
		series.New([]int{1, 2, 2}, series.Int, "a"),
		series.New([]int{10, 20, 20}, series.Int, "b"),
	)
	require.NoError(t, df.Err)

	// report only
	same, dupIdx, err := CheckDropDuplicates(df, []string{"a", "b"}, false)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, dupIdx)
	require.Equal(t, 3, same.Nrow())

	// drop keeping first occurrence
	dropped, _, err := CheckDropDuplicates(df, []string{"a", "b"}, true)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, dropped.Col("a").Records())
	require.Equal(t, []string{"10", "20"}, dropped.Col("b").Records())
}

func TestCheckDropDuplicatesKeepNone(t *testing.T) {
	df := dataframe.New(
		series.New([]int{1, 2, 2, 3}, series.Int, "a"),
	)
	require.NoError(t, df.Err)

	dropped, dupIdx, err := CheckDropDuplicates(df, []string{"a"}, true, WithKeep(KeepNone))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, dupIdx)
	require.Equal(t, []string{"1", "3"}, dropped.Col("a").Records())
}

func TestCheckDropDuplicatesSubsetColumns(t *testing.T) {
	df := dataframe.New(
		series.New([]int{1, 1, 2}, series.Int, "a"),
		series.New([]string{"x", "y", "z"}, series.String, "b"),
	)
	require.NoError(t, df.Err)

	dropped, dupIdx, err := CheckDropDuplicates(df, []string{"a"}, true)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, dupIdx)
	require.Equal(t, 2, dropped.Nrow())

	// the full result has no duplicates left over "a"
	_, dupIdx, err = CheckDropDuplicates(dropped, []string{"a"}, false)
	require.NoError(t, err)
	require.Empty(t, dupIdx)
	require.LessOrEqual(t, dropped.Nrow(), df.Nrow())
}

func TestCheckDropDuplicatesMissingColumn(t *testing.T) {
	df := dataframe.New(series.New([]int{1}, series.Int, "a"))
	require.NoError(t, df.Err)

	_, _, err := CheckDropDuplicates(df, []string{"nope"}, true)
	var colErr *errs.ColumnError
	require.ErrorAs(t, err, &colErr)
}
