package cmd

import (
	"context"
	"runtime"

	"github.com/go-gota/gota/dataframe"
	"github.com/segmentio/cli"

	"github.com/bigmb/tablekit"
)

var joinKinds = map[string]tablekit.JoinKind{
	"inner": tablekit.InnerJoin,
	"left":  tablekit.LeftJoin,
	"right": tablekit.RightJoin,
	"outer": tablekit.OuterJoin,
}

// cliMerge represents the merge command
var cliMerge = &cli.CommandFunc{
	Help: "Merge two tables on their common columns",
	Desc: unindent(`
		Merge two tables on their common columns

		Loads both tables, merges them in bounded-size chunks and writes
		the result as CSV. The merge keys default to every column name the
		two tables share; --on restricts them. --parallel merges the
		chunks concurrently instead of sequentially.
	`),
	Func: func(ctx context.Context, config struct {
		flagOutput
		flagChunkSize
		flagRegion
		On       []string `flag:"--on" help:"Merge key column, repeatable" default:"-"`
		How      string   `flag:"--how" help:"Join kind: inner, left, right or outer" default:"inner"`
		Parallel bool     `flag:"--parallel" help:"Merge chunks concurrently" default:"false"`
	}, args []string) error {
		if len(args) != 2 {
			bail("usage: tablekit merge <left> <right>")
		}
		how, ok := joinKinds[config.How]
		if !ok {
			bail("unknown join kind %q", config.How)
		}

		left, err := tablekit.Load(ctx, args[0],
			tablekit.WithChunkSize(config.ChunkSize),
			tablekit.WithS3Region(config.Region),
		)
		if err != nil {
			bail("could not load %s: %s", args[0], err)
		}
		right, err := tablekit.Load(ctx, args[1],
			tablekit.WithChunkSize(config.ChunkSize),
			tablekit.WithS3Region(config.Region),
		)
		if err != nil {
			bail("could not load %s: %s", args[1], err)
		}

		opts := []tablekit.Option{
			tablekit.WithJoinKind(how),
			tablekit.On(config.On...),
		}
		var merged dataframe.DataFrame
		if config.Parallel {
			merged, err = tablekit.MergeParallel(ctx, left, right, runtime.GOMAXPROCS(0), opts...)
		} else {
			merged, err = tablekit.MergeChunk(left, right, config.ChunkSize, opts...)
		}
		if err != nil {
			bail("could not merge: %s", err)
		}
		return writeTable(merged, config.Output)
	},
}
