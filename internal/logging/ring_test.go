package logging

import (
	"fmt"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"pgregory.net/rapid"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(DefaultRingSize)
	for i := 0; i < 101; i++ {
		r.Append(LogEntry{Message: fmt.Sprintf("entry %d", i)})
	}

	be.Equal(t, r.Len(), 100)
	be.Equal(t, r.Total(), 101)

	all := r.Recent(0)
	be.Equal(t, len(all), 100)
	be.Equal(t, all[0].Message, "entry 1")
	be.Equal(t, all[99].Message, "entry 100")

	last := r.Recent(50)
	be.Equal(t, len(last), 50)
	be.Equal(t, last[0].Message, "entry 51")
	be.Equal(t, last[49].Message, "entry 100")
}

func TestRingRecentBeforeFull(t *testing.T) {
	r := NewRing(5)
	r.Append(LogEntry{Message: "a"})
	r.Append(LogEntry{Message: "b"})

	got := r.Recent(10)
	be.Equal(t, len(got), 2)
	be.Equal(t, got[0].Message, "a")
	be.Equal(t, got[1].Message, "b")
}

func TestRingBoundedAndOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 20).Draw(rt, "size")
		n := rapid.IntRange(0, 60).Draw(rt, "appends")

		r := NewRing(size)
		for i := 0; i < n; i++ {
			r.Append(LogEntry{Message: fmt.Sprint(i)})
		}

		held := r.Recent(0)
		want := n
		if want > size {
			want = size
		}
		if len(held) != want {
			rt.Fatalf("held %d entries, want %d", len(held), want)
		}
		for i, e := range held {
			if e.Message != fmt.Sprint(n-want+i) {
				rt.Fatalf("entry %d = %q, want %d", i, e.Message, n-want+i)
			}
		}
		if r.Total() != n {
			rt.Fatalf("Total = %d, want %d", r.Total(), n)
		}
	})
}

func TestRingCoreCapturesFields(t *testing.T) {
	r := NewRing(10)
	logger := zap.New(NewRingCore(r, zapcore.InfoLevel)).With(zap.String("component", "test"))

	logger.Debug("dropped")
	logger.Info("kept", zap.Int("count", 3))

	got := r.Recent(0)
	be.Equal(t, len(got), 1)
	be.Equal(t, got[0].Message, "kept")
	be.Equal(t, got[0].Level, "info")
	be.Equal(t, got[0].Fields["component"], any("test"))
	be.Equal(t, got[0].Fields["count"], any(int64(3)))
	be.True(t, time.Since(got[0].Timestamp) < time.Minute)
}
