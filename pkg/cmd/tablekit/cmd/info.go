package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/segmentio/cli"

	"github.com/bigmb/tablekit"
)

// cliInfo represents the info command
var cliInfo = &cli.CommandFunc{
	Help: "Summarize a table",
	Desc: unindent(`
		Summarize a table

		Loads the table at the given path (.csv, .csv.zip, .parquet or an
		s3:// uri) and prints its row count plus one line per column with
		the column's dtype and inferred semantic category.
	`),
	Func: func(ctx context.Context, config struct {
		flagChunkSize
		flagRegion
	}, args []string) error {
		if len(args) != 1 {
			bail("usage: tablekit info <path>")
		}
		df, err := tablekit.Load(ctx, args[0],
			tablekit.WithChunkSize(config.ChunkSize),
			tablekit.WithS3Region(config.Region),
		)
		if err != nil {
			bail("could not load table: %s", err)
		}

		_, nulls, err := tablekit.CheckNull(df, false)
		if err != nil {
			bail("could not count nulls: %s", err)
		}

		fmt.Printf("rows: %d\ncolumns: %d\n\n", df.Nrow(), df.Ncol())
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.TabIndent)
		fmt.Fprintln(w, "COLUMN\tDTYPE\tCATEGORY\tNULLS")
		fmt.Fprintln(w, "------\t-----\t--------\t-----")
		for _, name := range df.Names() {
			col := df.Col(name)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", name, col.Type(), tablekit.ColumnType(col), nulls[name])
		}
		return w.Flush()
	},
}
