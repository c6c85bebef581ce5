package tablekit

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"github.com/segmentio/events/v2"

	"github.com/bigmb/tablekit/pkg/errs"
	"github.com/bigmb/tablekit/pkg/fileio"
	"github.com/bigmb/tablekit/pkg/globalstats"
	"github.com/bigmb/tablekit/pkg/literal"
	"github.com/bigmb/tablekit/pkg/sidecar"
)

// DefaultChunkSize is the number of CSV rows read per chunk.
const DefaultChunkSize = 1024

// unnamedPattern matches the auto-index columns some CSV writers emit
// ("Unnamed: 0" and friends).
var unnamedPattern = regexp.MustCompile(`^Unnamed`)

type config struct {
	logger      *events.Logger
	chunkSize   int
	literalCols []string
	s3Region    string
	s3Client    S3Client
	keep        KeepPolicy
	how         JoinKind
	on          []string
}

// Option configures the loader and transform functions. Unrecognized options
// are ignored by functions they don't apply to.
type Option func(*config)

// WithLogger routes a function's log output through an explicit logger
// instead of events.DefaultLogger.
func WithLogger(logger *events.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithChunkSize sets the CSV read chunk size in rows.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

// WithLiteralColumns names columns whose cells hold serialized literal
// expressions; the loader evaluates them and re-encodes each cell as JSON.
func WithLiteralColumns(columns ...string) Option {
	return func(c *config) { c.literalCols = append(c.literalCols, columns...) }
}

// WithS3Region pins the AWS region used to fetch s3:// sources.
func WithS3Region(region string) Option {
	return func(c *config) { c.s3Region = region }
}

// WithS3Client overrides the S3 client used to fetch s3:// sources.
// Mostly a test seam.
func WithS3Client(client S3Client) Option {
	return func(c *config) { c.s3Client = client }
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:    events.DefaultLogger,
		chunkSize: DefaultChunkSize,
		keep:      KeepFirst,
		how:       InnerJoin,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = events.DefaultLogger
	}
	if cfg.chunkSize < 1 {
		cfg.chunkSize = DefaultChunkSize
	}
	return cfg
}

// Load resolves source to a table. A dataframe source is returned unchanged;
// a string source is treated as a path (local or s3://) and dispatched on its
// extension: .csv, .csv.zip or .parquet. Any other source type fails with an
// *errs.TypeError.
func Load(ctx context.Context, source interface{}, opts ...Option) (dataframe.DataFrame, error) {
	switch src := source.(type) {
	case dataframe.DataFrame:
		return src, nil
	case *dataframe.DataFrame:
		return *src, nil
	case string:
		return loadPath(ctx, src, newConfig(opts))
	default:
		return dataframe.DataFrame{}, errs.BadType("source must be a file path or a dataframe, got %T", source)
	}
}

func loadPath(ctx context.Context, path string, cfg config) (df dataframe.DataFrame, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			errs.IncrDefault()
			return
		}
		globalstats.Observe("load_time", time.Since(start))
	}()

	cfg.logger.Log("loading table from %{path}s", path)

	if strings.HasPrefix(path, "s3://") {
		local, cleanup, ferr := fetchS3(ctx, path, cfg)
		if ferr != nil {
			return df, ferr
		}
		defer cleanup()
		path = local
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv.zip"):
		df, err = loadZippedCSV(ctx, path, cfg)
	case strings.HasSuffix(lower, ".csv"):
		df, err = loadCSV(ctx, path, cfg)
	case strings.HasSuffix(lower, ".parquet"):
		df, err = loadParquet(path, cfg)
	default:
		return df, errs.BadFormat("unsupported file format: %s", path)
	}
	if err != nil {
		return df, err
	}

	df = dropUnnamed(df, cfg)
	df, err = convertLiteralColumns(df, cfg)
	if err != nil {
		return df, err
	}

	cfg.logger.Log("loaded table from %{path}s: %d rows, %d columns", path, df.Nrow(), df.Ncol())
	return df, nil
}

func loadCSV(ctx context.Context, path string, cfg config) (dataframe.DataFrame, error) {
	data, err := fileio.ReadFile(ctx, path, cfg.logger)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	var meta *sidecar.Meta
	metaPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".meta"
	if metaData, err := os.ReadFile(metaPath); err == nil {
		meta, err = sidecar.Parse(metaData)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "sidecar %s", metaPath)
		}
		cfg.logger.Log("applying sidecar metadata from %{path}s", metaPath)
	}

	return parseCSV(data, meta, cfg)
}

func loadZippedCSV(ctx context.Context, path string, cfg config) (dataframe.DataFrame, error) {
	data, err := fileio.ReadFile(ctx, path, cfg.logger)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "open zip %s", path)
	}

	// foo.csv.zip holds foo.csv and, optionally, foo.meta
	base := strings.TrimSuffix(filepath.Base(path), ".zip")
	metaName := strings.TrimSuffix(base, filepath.Ext(base)) + ".meta"

	csvData, err := readZipMember(zr, base)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "zip %s", path)
	}

	var meta *sidecar.Meta
	if metaData, err := readZipMember(zr, metaName); err == nil {
		meta, err = sidecar.Parse(metaData)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "zip sidecar %s", metaName)
		}
	}

	return parseCSV(csvData, meta, cfg)
}

func readZipMember(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open member %s", name)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errs.NotFound("zip member not found: %s", name)
}

// parseCSV reads the CSV text in chunks of cfg.chunkSize rows and assembles
// the chunks into a single frame, preserving row order. When a sidecar is
// present its dtypes override gota's inference.
func parseCSV(data []byte, meta *sidecar.Meta, cfg config) (dataframe.DataFrame, error) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err == io.EOF {
		return dataframe.DataFrame{}, errs.BadFormat("csv has no header row")
	}
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "read csv header")
	}

	records := [][]string{header}
	for {
		chunk, err := readChunk(r, cfg.chunkSize)
		records = append(records, chunk...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrap(err, "read csv rows")
		}
	}

	loadOpts := []dataframe.LoadOption{dataframe.HasHeader(true)}
	if meta != nil {
		if err := meta.Normalize(header, records[1:]); err != nil {
			return dataframe.DataFrame{}, err
		}
		loadOpts = append(loadOpts, dataframe.WithTypes(meta.SeriesTypes()))
	}

	df := dataframe.LoadRecords(records, loadOpts...)
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "load csv records")
	}

	if meta != nil && len(meta.IndexNames) > 0 {
		df, err = frontColumns(df, meta.IndexNames)
		if err != nil {
			return df, err
		}
	}
	return df, nil
}

func readChunk(r *csv.Reader, size int) ([][]string, error) {
	chunk := make([][]string, 0, size)
	for len(chunk) < size {
		rec, err := r.Read()
		if err != nil {
			return chunk, err
		}
		chunk = append(chunk, rec)
	}
	return chunk, nil
}

// frontColumns moves the named columns to the front of the frame, in order.
// gota has no row index, so sidecar index columns become leading columns.
func frontColumns(df dataframe.DataFrame, names []string) (dataframe.DataFrame, error) {
	existing := df.Names()
	for _, name := range names {
		if indexOf(existing, name) < 0 {
			return df, errs.MissingColumn("index column %q not found in table", name)
		}
	}
	order := append([]string{}, names...)
	for _, name := range existing {
		if indexOf(names, name) < 0 {
			order = append(order, name)
		}
	}
	out := df.Select(order)
	if out.Err != nil {
		return df, errors.Wrap(out.Err, "reorder index columns")
	}
	return out, nil
}

func dropUnnamed(df dataframe.DataFrame, cfg config) dataframe.DataFrame {
	var drop []string
	for _, name := range df.Names() {
		if unnamedPattern.MatchString(name) {
			drop = append(drop, name)
		}
	}
	if len(drop) == 0 {
		return df
	}
	cfg.logger.Log("dropping auto-index columns: %v", drop)
	out := df.Drop(drop)
	if out.Err != nil {
		// dropping by known names cannot fail; keep the original on the off chance
		return df
	}
	return out
}

// convertLiteralColumns evaluates the configured columns' cells as literal
// expressions and re-encodes them as canonical JSON.
func convertLiteralColumns(df dataframe.DataFrame, cfg config) (dataframe.DataFrame, error) {
	for _, col := range cfg.literalCols {
		if indexOf(df.Names(), col) < 0 {
			return df, errs.MissingColumn("column %q not found in table", col)
		}
		cfg.logger.Log("converting column %{column}s from literal expressions", col)
		s := df.Col(col)
		values := make([]string, s.Len())
		for i := 0; i < s.Len(); i++ {
			if s.Elem(i).IsNA() {
				values[i] = "NaN"
				continue
			}
			cell := s.Elem(i).String()
			converted, err := literal.EvalJSON(cell)
			if err != nil {
				return df, errs.BadLiteral("error converting column %q row %d: %s", col, i, err)
			}
			values[i] = converted
		}
		out := df.Mutate(series.New(values, series.String, col))
		if out.Err != nil {
			return df, errors.Wrapf(out.Err, "replace column %q", col)
		}
		df = out
	}
	return df, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
