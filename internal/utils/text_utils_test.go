package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nalgeon/be"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	be.Equal(t, tp.TruncateText("hello", 0), "hello")
	be.Equal(t, tp.TruncateText("hello", 10), "hello")
	be.Equal(t, tp.TruncateText("hello world", 5), "hello"+truncationMarker)

	// "é" is two bytes; cutting in the middle must back off to a rune boundary.
	be.Equal(t, tp.TruncateText("aé", 2), "a"+truncationMarker)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	be.Equal(t, tp.SanitizeUTF8("plain"), "plain")
	be.Equal(t, tp.SanitizeUTF8("bad\xffbyte"), "badbyte")
}

func TestProcessTextNormalizes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	decomposed := "cafe\u0301"
	be.Equal(t, tp.ProcessText("  "+decomposed+"  ", 0), "caf\u00e9")
}

func TestProcessTextAlwaysValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.SliceOf(rapid.Byte()).Draw(rt, "raw")
		maxSize := rapid.IntRange(0, 64).Draw(rt, "max_size")

		out := tp.ProcessText(string(raw), maxSize)
		if !utf8.ValidString(out) {
			rt.Fatalf("ProcessText returned invalid UTF-8: %q", out)
		}
		if maxSize > 0 {
			body := strings.TrimSuffix(out, truncationMarker)
			if len(body) > maxSize {
				rt.Fatalf("body length %d exceeds max %d", len(body), maxSize)
			}
		}
	})
}
