package core

import (
	"math"
	"strings"
	"time"
)

const (
	// LeadThreshold is the confidence a lead verdict must strictly exceed
	LeadThreshold = 0.6

	// LabelLead is applied to messages routed as leads
	LabelLead = "lead"
	// LabelOther is applied to everything else
	LabelOther = "other"
)

// InboundMessage is a decoded provider message
type InboundMessage struct {
	ID       string
	ThreadID string
	Subject  string
	From     string
	To       string
	Body     string
}

// Verdict is the result of lead classification
type Verdict struct {
	IsLead     bool     `json:"isLead"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
	Keywords   []string `json:"keywords"`
}

// FallbackVerdict is used whenever classification fails
func FallbackVerdict() Verdict {
	return Verdict{
		IsLead:     false,
		Confidence: 0,
		Reason:     "analysis failed",
		Keywords:   []string{},
	}
}

// NewVerdict builds a verdict from untrusted values, clamping confidence
// to [0,1] and dropping blank keywords.
func NewVerdict(isLead bool, confidence float64, reason string, keywords []string) Verdict {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return Verdict{
		IsLead:     isLead,
		Confidence: ClampConfidence(confidence),
		Reason:     strings.TrimSpace(reason),
		Keywords:   cleaned,
	}
}

// ClampConfidence forces c into [0,1]. NaN becomes 0.
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// IsEffectiveLead reports whether the verdict routes the message as a lead
func (v Verdict) IsEffectiveLead() bool {
	return v.IsLead && ClampConfidence(v.Confidence) > LeadThreshold
}

// Label returns the routing label for the verdict
func (v Verdict) Label() string {
	if v.IsEffectiveLead() {
		return LabelLead
	}
	return LabelOther
}

// ProcessingResult records the outcome for one candidate in a cycle
type ProcessingResult struct {
	Success    bool    `json:"success"`
	MessageID  string  `json:"messageId"`
	From       string  `json:"from,omitempty"`
	Subject    string  `json:"subject,omitempty"`
	IsLead     bool    `json:"isLead"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label,omitempty"`
	Labeled    bool    `json:"labeled"`
	Error      string  `json:"error,omitempty"`
}

// CycleReport aggregates the results of one poll cycle
type CycleReport struct {
	ProcessedCount int                `json:"processedCount"`
	Results        []ProcessingResult `json:"results"`
	StartedAt      time.Time          `json:"startedAt"`
	FinishedAt     time.Time          `json:"finishedAt"`
}

// Stats is a point-in-time summary of the service
type Stats struct {
	ProcessedEmails int       `json:"processedEmails"`
	CyclesRun       int       `json:"cyclesRun"`
	LastCycleAt     time.Time `json:"lastCycleAt,omitempty"`
}
