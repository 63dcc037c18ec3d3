package core

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
	"pgregory.net/rapid"
)

func TestThresholdBoundary(t *testing.T) {
	tests := []struct {
		name       string
		isLead     bool
		confidence float64
		wantLead   bool
	}{
		{"at threshold", true, 0.6, false},
		{"just above", true, 0.61, true},
		{"certain", true, 1, true},
		{"not a lead", false, 0.95, false},
		{"over range", true, 7, true},
		{"negative", true, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Verdict{IsLead: tt.isLead, Confidence: tt.confidence}
			be.Equal(t, v.IsEffectiveLead(), tt.wantLead)
			if tt.wantLead {
				be.Equal(t, v.Label(), LabelLead)
			} else {
				be.Equal(t, v.Label(), LabelOther)
			}
		})
	}
}

func TestFallbackVerdict(t *testing.T) {
	v := FallbackVerdict()
	be.Equal(t, v.IsLead, false)
	be.Equal(t, v.Confidence, 0.0)
	be.Equal(t, v.Reason, "analysis failed")
	be.Equal(t, v.Keywords, []string{})
	be.Equal(t, v.Label(), LabelOther)
}

func TestNewVerdictCleansInput(t *testing.T) {
	v := NewVerdict(true, 1.4, "  pricing request ", []string{"quote", " ", "", " pricing "})
	be.Equal(t, v.Confidence, 1.0)
	be.Equal(t, v.Reason, "pricing request")
	be.Equal(t, v.Keywords, []string{"quote", "pricing"})

	be.Equal(t, NewVerdict(true, math.NaN(), "", nil).Confidence, 0.0)
	be.Equal(t, NewVerdict(true, 0.3, "", nil).Keywords, []string{})
}

func TestClampConfidenceInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := rapid.Float64().Draw(rt, "confidence")
		got := ClampConfidence(c)
		if got < 0 || got > 1 {
			rt.Fatalf("ClampConfidence(%v) = %v", c, got)
		}
		if c >= 0 && c <= 1 && got != c {
			rt.Fatalf("in-range value changed: %v -> %v", c, got)
		}
	})
}
