package tablekit

import (
	"io"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"

	"github.com/bigmb/tablekit/pkg/errs"
)

// loadParquet reads a flat parquet file into a frame. Nested schemas are
// rejected since a frame column holds scalar values only.
func loadParquet(path string, cfg config) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataframe.DataFrame{}, errs.NotFound("file not found: %s", path)
		}
		return dataframe.DataFrame{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "stat %s", path)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "open parquet %s", path)
	}

	fields := pf.Schema().Fields()
	header := make([]string, len(fields))
	types := make(map[string]series.Type, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return dataframe.DataFrame{}, errs.BadFormat("parquet column %q is nested; only flat schemas are supported", field.Name())
		}
		header[i] = field.Name()
		types[field.Name()] = seriesTypeOf(field.Type().Kind())
	}

	records := [][]string{header}
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make([]string, len(fields))
				for i := range rec {
					rec[i] = "NaN"
				}
				for _, v := range row {
					if int(v.Column()) < len(rec) {
						rec[v.Column()] = formatValue(v)
					}
				}
				records = append(records, rec)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return dataframe.DataFrame{}, errors.Wrapf(err, "read parquet rows %s", path)
			}
		}
		rows.Close()
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return df, errors.Wrapf(df.Err, "load parquet records %s", path)
	}
	return df, nil
}

func seriesTypeOf(kind parquet.Kind) series.Type {
	switch kind {
	case parquet.Boolean:
		return series.Bool
	case parquet.Int32, parquet.Int64:
		return series.Int
	case parquet.Float, parquet.Double:
		return series.Float
	default:
		return series.String
	}
}

func formatValue(v parquet.Value) string {
	if v.IsNull() {
		return "NaN"
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
