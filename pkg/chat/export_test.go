package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcript() []Message {
	return []Message{
		{ID: "1", Role: RoleUser, Content: "what is in the report?"},
		{ID: "2", Role: RoleModel, Content: "The report covers Q3 results.", Grounding: &Grounding{
			Chunks: []SourceChunk{
				{RetrievedContext: &Source{Title: "report.pdf"}},
			},
		}},
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(transcript())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Chat Transcript")
	assert.Contains(t, text, "**You:** what is in the report?")
	assert.Contains(t, text, "**Model:** The report covers Q3 results.")
	assert.Contains(t, text, "- report.pdf")
}

func TestPDFFormatter(t *testing.T) {
	out, err := NewPDFFormatter().Format(transcript())
	require.NoError(t, err)

	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
	assert.Equal(t, "application/pdf", NewPDFFormatter().ContentType())
	assert.Equal(t, ".pdf", NewPDFFormatter().FileExtension())
}
