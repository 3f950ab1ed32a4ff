package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/codeprobe/internal/model"
)

const sampleReport = `{
  "overview": "line one\nline two\nline three",
  "language": "Python",
  "framework": "Unknown",
  "open_passwords": [["password", "hunter2"], ["pwd", "x"]],
  "open_keys": ["AKIAEXAMPLE"],
  "optimization": ["use a set"],
  "naming_conventions": "Fail: camelCase found",
  "indentation": "4 spaces",
  "lint_issues": ["E501", "W291", "E302"],
  "duplicate_code": {
    "exact_duplicates": [{"count": 2, "example": "x = 1"}],
    "similar_blocks": [{"similarity": 0.875, "block1": "a = 1", "block2": "a = 2"}]
  },
  "status": "success",
  "extra_field": true
}`

func TestDecodeAnalysisResult_Fields(t *testing.T) {
	t.Parallel()

	res, err := model.DecodeAnalysisResult([]byte(sampleReport))
	require.NoError(t, err)

	assert.Equal(t, "Python", res.Language)
	require.Len(t, res.OpenPasswords, 2)
	assert.Equal(t, "password", res.OpenPasswords[0].Name())
	assert.Equal(t, "hunter2", res.OpenPasswords[0].Value())
	require.Len(t, res.DuplicateCode.SimilarBlocks, 1)
	assert.InDelta(t, 0.875, res.DuplicateCode.SimilarBlocks[0].Similarity, 1e-9)
}

func TestAnalysisResult_MarshalReturnsRawVerbatim(t *testing.T) {
	t.Parallel()

	res, err := model.DecodeAnalysisResult([]byte(sampleReport))
	require.NoError(t, err)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, sampleReport, string(out))
	assert.Contains(t, string(out), "extra_field")
}

func TestAnalysisResult_MarshalWithoutRaw(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(model.AnalysisResult{Language: "Go"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"language":"Go"`)
}

func TestDecodeAnalysisResult_MissingFieldsAreZero(t *testing.T) {
	t.Parallel()

	res, err := model.DecodeAnalysisResult([]byte(`{"status":"ok"}`))
	require.NoError(t, err)
	assert.Empty(t, res.LintIssues)
	assert.Empty(t, res.DuplicateCode.ExactDuplicates)
}

func TestDecodeAnalysisResult_MistypedFieldKeepsRest(t *testing.T) {
	t.Parallel()

	body := `{"language": 42, "status": "success", "lint_issues": ["W291"]}`
	res, err := model.DecodeAnalysisResult([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, res.Language)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, []string{"W291"}, res.LintIssues)
	assert.Equal(t, body, string(res.Raw))
}

func TestDecodeAnalysisResult_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := model.DecodeAnalysisResult([]byte(`{"language": `))
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	res, err := model.DecodeAnalysisResult([]byte(sampleReport))
	require.NoError(t, err)

	s := model.Summarize(res)
	assert.Equal(t, 3, s.SecurityIssues)
	assert.Equal(t, 3, s.LintIssues)
	assert.Equal(t, 1, s.Suggestions)
	assert.Equal(t, 1, s.ExactDuplicates)
	assert.Equal(t, 1, s.SimilarPairs)
	assert.Equal(t, 3, s.ApproxLines)
	assert.False(t, s.FrameworkDetected)
	assert.True(t, s.NamingFailing)
	assert.False(t, s.Secure)
}

func TestSummarize_CleanReport(t *testing.T) {
	t.Parallel()

	s := model.Summarize(&model.AnalysisResult{Framework: "Django", NamingConventions: "Pass"})
	assert.True(t, s.Secure)
	assert.True(t, s.FrameworkDetected)
	assert.False(t, s.NamingFailing)
	assert.Zero(t, s.ApproxLines)
}
