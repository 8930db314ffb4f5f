package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mkTimeline(base time.Time, offsets ...time.Duration) Timeline {
	tl := make(Timeline, len(offsets))
	for i, off := range offsets {
		tl[i] = Step{Name: string(rune('A' + i)), At: base.Add(off)}
	}
	return tl
}

func TestClampRepairNoOpWithinLimit(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tl := mkTimeline(base, 0, 10*time.Minute, 20*time.Minute)

	out := tl.ClampRepair(base.Add(time.Hour))

	require.Equal(t, tl, out)
}

func TestClampRepairClampedTailStaysStrict(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limit := base.Add(25 * time.Minute)
	tl := mkTimeline(base, 0, 10*time.Minute, 20*time.Minute, 30*time.Minute, 40*time.Minute)

	out := tl.ClampRepair(limit)

	require.Equal(t, base, out[0].At, "earliest step must not move when headroom exists")
	for i := 1; i < len(out); i++ {
		require.True(t, out[i].At.After(out[i-1].At),
			"step %d (%s) must come after step %d", i, out[i].At, i-1)
	}
	for i := range out {
		require.False(t, out[i].At.After(limit), "step %d exceeds the limit", i)
	}
}

func TestClampRepairFullyPastLimit(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limit := base.Add(-time.Hour)
	tl := mkTimeline(base, 0, 5*time.Minute, 10*time.Minute, 15*time.Minute)

	out := tl.ClampRepair(limit)

	require.Equal(t, limit, out[len(out)-1].At)
	for i := 1; i < len(out); i++ {
		require.True(t, out[i].At.After(out[i-1].At))
		require.False(t, out[i].At.After(limit))
	}
}

func TestClampRepairHonorsMinGap(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limit := base.Add(10 * time.Minute)
	tl := Timeline{
		{Name: "first", At: base},
		{Name: "second", At: base.Add(30 * time.Minute), MinGap: 5 * time.Minute},
		{Name: "third", At: base.Add(60 * time.Minute), MinGap: 2 * time.Minute},
	}

	out := tl.ClampRepair(limit)

	require.Equal(t, limit, out[2].At)
	require.Equal(t, limit.Add(-2*time.Minute), out[1].At)
	require.Equal(t, base, out[0].At)
}

func TestTimelineAt(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tl := Timeline{{Name: "PLACED", At: base}}

	require.Equal(t, base, tl.At("PLACED"))
	require.True(t, tl.At("MISSING").IsZero())
}
