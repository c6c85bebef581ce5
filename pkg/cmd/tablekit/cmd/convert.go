package cmd

import (
	"context"

	"github.com/segmentio/cli"

	"github.com/bigmb/tablekit"
)

// cliConvert represents the convert command
var cliConvert = &cli.CommandFunc{
	Help: "Load a table and write it back out as CSV",
	Desc: unindent(`
		Load a table and write it back out as CSV

		Useful to flatten a parquet file, a zipped CSV or an s3:// object
		into a plain local CSV. Columns named with --literal-column have
		their cells evaluated as serialized literals and re-encoded as
		JSON on the way through.
	`),
	Func: func(ctx context.Context, config struct {
		flagOutput
		flagChunkSize
		flagRegion
		flagLiteralColumns
		FillNulls bool `flag:"--fill-nulls" help:"Fill nulls in numeric columns with zero" default:"false"`
	}, args []string) error {
		if len(args) != 1 {
			bail("usage: tablekit convert <path>")
		}
		df, err := tablekit.Load(ctx, args[0],
			tablekit.WithChunkSize(config.ChunkSize),
			tablekit.WithS3Region(config.Region),
			tablekit.WithLiteralColumns(config.LiteralColumns...),
		)
		if err != nil {
			bail("could not load table: %s", err)
		}
		if config.FillNulls {
			df, _, err = tablekit.CheckNull(df, true)
			if err != nil {
				bail("could not fill nulls: %s", err)
			}
		}
		return writeTable(df, config.Output)
	},
}
