package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/nalgeon/be"
)

func TestResponseText(t *testing.T) {
	be.Equal(t, responseText(nil), "")
	be.Equal(t, responseText(&genai.GenerateContentResponse{}), "")

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"isLead":`), genai.Text(`true}`)}},
		}},
	}
	be.Equal(t, responseText(resp), `{"isLead":true}`)
}
