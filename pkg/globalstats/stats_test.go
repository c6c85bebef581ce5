package globalstats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/stats/v4"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	mut            sync.Mutex
	measuresByName map[string][]stats.Measure
}

// fakeHandler needs to conform to the stats.Handler interface.
var _ stats.Handler = &fakeHandler{}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{
		measuresByName: make(map[string][]stats.Measure),
	}
}

func (h *fakeHandler) HandleMeasures(t time.Time, measures ...stats.Measure) {
	h.mut.Lock()
	defer h.mut.Unlock()

	for _, m := range measures {
		h.measuresByName[m.Name] = append(h.measuresByName[m.Name], m.Clone())
	}
}

func (h *fakeHandler) fields(name string) []stats.Field {
	h.mut.Lock()
	defer h.mut.Unlock()

	var out []stats.Field
	for _, m := range h.measuresByName[name] {
		out = append(out, m.Fields...)
	}
	return out
}

func TestGlobalStatsIncr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer Disable()

	h := newFakeHandler()
	Initialize(ctx, Config{
		AppName:      "globalstats.test",
		StatsHandler: h,
		FlushEvery:   10 * time.Millisecond,
		SamplePct:    1,
	})

	Incr("load-table")
	Incr("load-table")
	Incr("merge-chunk")

	require.Eventually(t, func() bool {
		return len(h.fields(statsPrefix)) >= 3
	}, time.Second, 10*time.Millisecond)

	counts := map[string]int{}
	for _, f := range h.fields(statsPrefix) {
		counts[f.Name] += int(f.Value.Int())
	}
	require.Equal(t, 2, counts["load-table"])
	require.Equal(t, 1, counts["merge-chunk"])
}

func TestGlobalStatsDisabled(t *testing.T) {
	Disable()

	// must be no-ops without an engine
	Incr("load-table")
	Observe("load-time", 12*time.Millisecond)
}

func TestInitializeWithoutHandler(t *testing.T) {
	defer Disable()

	// no handler: initialization logs and leaves stats disabled
	Initialize(context.Background(), Config{AppName: "globalstats.test"})
	Incr("load-table")
}
