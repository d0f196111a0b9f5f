package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePromptsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPromptsPlainLines(t *testing.T) {
	path := writePromptsFile(t, `
# warmups
Explain thermal throttling

Summarize this document
`)
	prompts, err := readPrompts(path)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, "Explain thermal throttling", prompts[0].Prompt)
	assert.Equal(t, "Summarize this document", prompts[1].Prompt)
}

func TestReadPromptsJSONLines(t *testing.T) {
	path := writePromptsFile(t, `{"prompt": "What is 2+2?", "category": "math"}
plain prompt line
{"prompt": "Translate hello"}
`)
	batchCategory = "default"
	defer func() { batchCategory = "" }()

	prompts, err := readPrompts(path)
	require.NoError(t, err)
	require.Len(t, prompts, 3)

	assert.Equal(t, "What is 2+2?", prompts[0].Prompt)
	assert.Equal(t, "math", prompts[0].Category)
	assert.Equal(t, "default", prompts[1].Category)
	assert.Equal(t, "default", prompts[2].Category, "JSON lines without a category inherit the flag")
}

func TestReadPromptsBadJSON(t *testing.T) {
	path := writePromptsFile(t, `{"prompt": broken`)
	_, err := readPrompts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad JSON prompt")
}

func TestReadPromptsEmptyPromptRejected(t *testing.T) {
	path := writePromptsFile(t, `{"prompt": ""}`)
	_, err := readPrompts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty prompt")
}

func TestReadPromptsMissingFile(t *testing.T) {
	_, err := readPrompts("/nonexistent/prompts.txt")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "0123456789...", truncate("0123456789abcdef", 10))
}
