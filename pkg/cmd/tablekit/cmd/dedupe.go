package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/segmentio/cli"

	"github.com/bigmb/tablekit"
)

// cliDedupe represents the dedupe command
var cliDedupe = &cli.CommandFunc{
	Help: "Drop duplicate rows from a table",
	Desc: unindent(`
		Drop duplicate rows from a table

		Loads the table at the given path, finds rows duplicated with
		respect to the chosen columns (all columns when none are given) and
		writes the deduplicated table as CSV. With --keep-none every
		occurrence of a duplicated row is removed instead of keeping the
		first one.
	`),
	Func: func(ctx context.Context, config struct {
		flagOutput
		flagChunkSize
		flagRegion
		Columns  []string `flag:"-c,--column" help:"Column to consider for duplicate detection, repeatable" default:"-"`
		KeepNone bool     `flag:"--keep-none" help:"Drop every occurrence of a duplicated row" default:"false"`
		DryRun   bool     `flag:"--dry-run" help:"Only report duplicates, don't drop them" default:"false"`
	}, args []string) error {
		if len(args) != 1 {
			bail("usage: tablekit dedupe <path>")
		}
		df, err := tablekit.Load(ctx, args[0],
			tablekit.WithChunkSize(config.ChunkSize),
			tablekit.WithS3Region(config.Region),
		)
		if err != nil {
			bail("could not load table: %s", err)
		}

		keep := tablekit.KeepFirst
		if config.KeepNone {
			keep = tablekit.KeepNone
		}
		out, dupIdx, err := tablekit.CheckDropDuplicates(df, config.Columns, !config.DryRun,
			tablekit.WithKeep(keep),
		)
		if err != nil {
			bail("could not deduplicate: %s", err)
		}
		fmt.Fprintf(os.Stderr, "%d duplicate rows, %d rows in result\n", len(dupIdx), out.Nrow())
		if config.DryRun {
			return nil
		}
		return writeTable(out, config.Output)
	},
}
