package tablekit

import (
	"context"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bigmb/tablekit/pkg/errs"
	"github.com/bigmb/tablekit/pkg/globalstats"
)

// JoinKind selects how matching rows combine during a merge.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	OuterJoin
)

// WithJoinKind sets the join used by MergeChunk and MergeParallel.
// The default is InnerJoin.
func WithJoinKind(how JoinKind) Option {
	return func(c *config) { c.how = how }
}

// On restricts the merge keys to the named columns instead of every column
// the two tables have in common.
func On(columns ...string) Option {
	return func(c *config) { c.on = append(c.on, columns...) }
}

// MergeChunk merges two tables on their common columns, splitting the larger
// table into row chunks of chunkSize to bound peak memory. The result holds
// the same rows as a single unchunked merge with the same options.
func MergeChunk(left, right dataframe.DataFrame, chunkSize int, opts ...Option) (dataframe.DataFrame, error) {
	cfg := newConfig(opts)
	if chunkSize < 1 {
		return dataframe.DataFrame{}, errs.BadRequest("chunk size must be positive, got %d", chunkSize)
	}
	base, large, keys, how, err := mergePlan(left, right, cfg)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	start := time.Now()
	defer func() { globalstats.Observe("merge_chunk_time", time.Since(start)) }()
	cfg.logger.Log("merging %d x %d rows on %v in chunks of %d", base.Nrow(), large.Nrow(), keys, chunkSize)

	// appending per-chunk results is only sound for inner joins: any other
	// kind would re-emit unmatched base rows once per chunk
	if how != InnerJoin || large.Nrow() == 0 {
		result := join(base, large, how, keys)
		if result.Err != nil {
			return result, errors.Wrap(result.Err, "merge")
		}
		return result, nil
	}

	var result dataframe.DataFrame
	for offset := 0; offset < large.Nrow(); offset += chunkSize {
		chunk, err := sliceRows(large, offset, min(offset+chunkSize, large.Nrow()))
		if err != nil {
			return result, err
		}
		merged := join(base, chunk, how, keys)
		if merged.Err != nil {
			return result, errors.Wrapf(merged.Err, "merge chunk at row %d", offset)
		}
		if offset == 0 {
			result = merged
			continue
		}
		result = result.RBind(merged)
		if result.Err != nil {
			return result, errors.Wrapf(result.Err, "append chunk at row %d", offset)
		}
	}
	globalstats.Incr("merge-chunk")
	return result, nil
}

// MergeParallel merges two tables by partitioning the larger one and joining
// the partitions concurrently. partitions <= 0 picks a count from the table
// size. Row sets match MergeChunk with the same options; the relative order
// of partitions is preserved.
func MergeParallel(ctx context.Context, left, right dataframe.DataFrame, partitions int, opts ...Option) (dataframe.DataFrame, error) {
	cfg := newConfig(opts)
	base, large, keys, how, err := mergePlan(left, right, cfg)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if partitions <= 0 {
		partitions = defaultPartitions(large.Nrow())
	}
	if partitions > large.Nrow() {
		partitions = large.Nrow()
	}
	if partitions < 1 {
		partitions = 1
	}

	start := time.Now()
	defer func() { globalstats.Observe("merge_parallel_time", time.Since(start)) }()
	cfg.logger.Log("merging %d x %d rows on %v across %d partitions", base.Nrow(), large.Nrow(), keys, partitions)

	// same soundness constraint as MergeChunk: only inner joins partition
	if how != InnerJoin {
		if err := ctx.Err(); err != nil {
			return dataframe.DataFrame{}, err
		}
		result := join(base, large, how, keys)
		if result.Err != nil {
			return result, errors.Wrap(result.Err, "merge")
		}
		return result, nil
	}

	size := (large.Nrow() + partitions - 1) / partitions
	results := make([]dataframe.DataFrame, partitions)

	group, ctx := errgroup.WithContext(ctx)
	for p := 0; p < partitions; p++ {
		p := p
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lo := p * size
			hi := min(lo+size, large.Nrow())
			if lo >= hi {
				return nil
			}
			chunk, err := sliceRows(large, lo, hi)
			if err != nil {
				return err
			}
			merged := join(base, chunk, how, keys)
			if merged.Err != nil {
				return errors.Wrapf(merged.Err, "merge partition %d", p)
			}
			results[p] = merged
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return dataframe.DataFrame{}, err
	}

	var result dataframe.DataFrame
	first := true
	for _, part := range results {
		if part.Nrow() == 0 && part.Ncol() == 0 {
			continue
		}
		if first {
			result = part
			first = false
			continue
		}
		result = result.RBind(part)
		if result.Err != nil {
			return result, errors.Wrap(result.Err, "append partition")
		}
	}
	if first {
		// every partition merged to nothing
		result = join(base, large, how, keys)
		if result.Err != nil {
			return result, errors.Wrap(result.Err, "merge")
		}
	}
	return result, nil
}

// mergePlan validates the merge inputs and puts the smaller table first as
// the merge base, flipping directional joins so they still mean what the
// caller asked for. It fails when the tables share no column names.
func mergePlan(left, right dataframe.DataFrame, cfg config) (base, large dataframe.DataFrame, keys []string, how JoinKind, err error) {
	how = cfg.how
	keys = cfg.on
	if len(keys) == 0 {
		keys = commonColumns(left, right)
	}
	if len(keys) == 0 {
		return base, large, nil, how, errs.MissingColumn("tables share no column names to merge on")
	}
	for _, key := range keys {
		if indexOf(left.Names(), key) < 0 || indexOf(right.Names(), key) < 0 {
			return base, large, nil, how, errs.MissingColumn("merge key %q not present in both tables", key)
		}
	}
	if left.Nrow() <= right.Nrow() {
		return left, right, keys, how, nil
	}
	switch how {
	case LeftJoin:
		how = RightJoin
	case RightJoin:
		how = LeftJoin
	}
	return right, left, keys, how, nil
}

func join(base, chunk dataframe.DataFrame, how JoinKind, keys []string) dataframe.DataFrame {
	switch how {
	case LeftJoin:
		return base.LeftJoin(chunk, keys...)
	case RightJoin:
		return base.RightJoin(chunk, keys...)
	case OuterJoin:
		return base.OuterJoin(chunk, keys...)
	default:
		return base.InnerJoin(chunk, keys...)
	}
}

func commonColumns(a, b dataframe.DataFrame) []string {
	var common []string
	for _, name := range a.Names() {
		if indexOf(b.Names(), name) >= 0 {
			common = append(common, name)
		}
	}
	return common
}

func sliceRows(df dataframe.DataFrame, lo, hi int) (dataframe.DataFrame, error) {
	idx := make([]int, hi-lo)
	for i := range idx {
		idx[i] = lo + i
	}
	out := df.Subset(idx)
	if out.Err != nil {
		return out, errors.Wrapf(out.Err, "slice rows [%d,%d)", lo, hi)
	}
	return out, nil
}

// defaultPartitions sizes the partition count to the table so small tables
// don't pay goroutine overhead and huge ones don't serialize.
func defaultPartitions(nrow int) int {
	p := nrow / 100000
	if p < 2 {
		p = 2
	}
	if p > 32 {
		p = 32
	}
	return p
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
