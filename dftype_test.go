package tablekit

import (
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"
)

func TestColumnType(t *testing.T) {
	for _, tc := range []struct {
		name   string
		s      series.Series
		expect string
	}{
		{
			name:   "ints",
			s:      series.New([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, series.Int, "x"),
			expect: "int",
		},
		{
			name:   "floats",
			s:      series.New([]float64{1.5, 2.5}, series.Float, "x"),
			expect: "float",
		},
		{
			name:   "bools",
			s:      series.New([]bool{true, false}, series.Bool, "x"),
			expect: "bool",
		},
		{
			name:   "empty",
			s:      series.New([]string{}, series.String, "x"),
			expect: TypeObject,
		},
		{
			name:   "all null",
			s:      series.New([]string{"NaN", "NaN"}, series.Int, "x"),
			expect: "int",
		},
		{
			name:   "plain strings",
			s:      series.New([]string{"foo", "bar"}, series.String, "x"),
			expect: TypeString,
		},
		{
			name:   "json objects",
			s:      series.New([]string{`{"a": 1}`, `{"b": [2]}`}, series.String, "x"),
			expect: TypeJSON,
		},
		{
			name:   "json lists",
			s:      series.New([]string{`[1, "a"]`, `["b", 2]`}, series.String, "x"),
			expect: TypeJSON,
		},
		{
			name:   "ndarrays",
			s:      series.New([]string{`[[1, 2], [3, 4]]`, `[[5, 6]]`}, series.String, "x"),
			expect: TypeNDArray,
		},
		{
			name:   "sparse arrays",
			s:      series.New([]string{`{"shape": [4], "indices": [0], "values": [9]}`}, series.String, "x"),
			expect: TypeSparse,
		},
		{
			name:   "images",
			s:      series.New([]string{"data:image/png;base64,iVBORw0K"}, series.String, "x"),
			expect: TypeImage,
		},
		{
			name:   "timestamps",
			s:      series.New([]string{"2023-04-01 12:00:00", "2023-04-02 13:30:00"}, series.String, "x"),
			expect: TypeTimestamp,
		},
		{
			name:   "durations",
			s:      series.New([]string{"1h30m", "45s"}, series.String, "x"),
			expect: TypeDuration,
		},
		{
			name:   "numeric strings",
			s:      series.New([]string{"1", "2.5"}, series.String, "x"),
			expect: "float",
		},
		{
			name:   "numeric and timestamp",
			s:      series.New([]string{"1", "2023-04-01"}, series.String, "x"),
			expect: TypeObject,
		},
		{
			name:   "mixed objects",
			s:      series.New([]string{"foo", `{"a": 1}`, "2023-04-01"}, series.String, "x"),
			expect: TypeObject,
		},
		{
			name:   "nulls ignored",
			s:      series.New([]string{"NaN", "foo", "bar"}, series.String, "x"),
			expect: TypeString,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, ColumnType(tc.s))
		})
	}
}
