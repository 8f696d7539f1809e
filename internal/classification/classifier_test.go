package classification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notion-insights/internal/llm"
	"github.com/jonathan/notion-insights/internal/types"
)

// fakeLLM returns canned responses keyed by the document title embedded in
// the prompt.
type fakeLLM struct {
	responses map[string]string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _, userPrompt string, _ llm.GenerateOptions) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	for title, resp := range f.responses {
		if strings.Contains(userPrompt, title) {
			return resp, nil
		}
	}
	return "", errors.New("no canned response")
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

type fakeRepo struct {
	pending       []types.Document
	pendingErr    error
	includeFailed *bool
	persisted     []types.Classification
	failed        map[string]string
}

func (f *fakeRepo) PendingClassification(_ context.Context, includeFailed bool) ([]types.Document, error) {
	f.includeFailed = &includeFailed
	return f.pending, f.pendingErr
}

func (f *fakeRepo) UpsertClassifications(_ context.Context, classifications []types.Classification) error {
	f.persisted = append(f.persisted, classifications...)
	return nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, documentID, message string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[documentID] = message
	return nil
}

func validResponse(docType, sub string) string {
	return fmt.Sprintf(`{"document_type": %q, "sub_category": %q, "confidence_score": 0.9, "classification_reason": "clear signal"}`, docType, sub)
}

func doc(id, title string) types.Document {
	return types.Document{ID: id, Title: title, Content: "body of " + title}
}

func TestClassify_ValidResponse(t *testing.T) {
	client := &fakeLLM{responses: map[string]string{"Sprint Plan": validResponse("project", "planning")}}
	classifier := New(client, &fakeRepo{}, false)

	result, err := classifier.Classify(context.Background(), doc("d1", "Sprint Plan"))
	require.NoError(t, err)
	assert.Equal(t, "d1", result.DocumentID)
	assert.Equal(t, types.DocTypeProject, result.DocumentType)
	assert.Equal(t, types.SubPlanning, result.SubCategory)
	assert.InDelta(t, 0.9, result.ConfidenceScore, 1e-9)
	assert.False(t, result.ClassifiedAt.IsZero())
}

func TestClassify_TruncatesLongContent(t *testing.T) {
	client := &fakeLLM{responses: map[string]string{"Long": validResponse("knowledge", "reference")}}
	classifier := New(client, &fakeRepo{}, false)

	long := doc("d1", "Long")
	long.Content = strings.Repeat("x", maxContentChars+500)

	_, err := classifier.Classify(context.Background(), long)
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.NotContains(t, client.prompts[0], strings.Repeat("x", maxContentChars+1))
	assert.Contains(t, client.prompts[0], strings.Repeat("x", maxContentChars))
}

func TestClassify_MultibyteContentAtCapStaysValidUTF8(t *testing.T) {
	client := &fakeLLM{responses: map[string]string{"CJK": validResponse("knowledge", "reference")}}
	classifier := New(client, &fakeRepo{}, false)

	// A three-byte rune straddles the content cap; the prompt must not
	// carry a split rune.
	cjk := doc("d1", "CJK")
	cjk.Content = strings.Repeat("x", maxContentChars-1) + "世界"

	_, err := classifier.Classify(context.Background(), cjk)
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.True(t, utf8.ValidString(client.prompts[0]))
	assert.NotContains(t, client.prompts[0], "世")
}

func TestClassify_RejectsBadResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", `the document is clearly a project`},
		{"missing field", `{"document_type": "project", "sub_category": "planning", "confidence_score": 0.9}`},
		{"unknown field", `{"document_type": "project", "sub_category": "planning", "confidence_score": 0.9, "classification_reason": "r", "extra": true}`},
		{"wrong enum pairing", `{"document_type": "project", "sub_category": "tutorial", "confidence_score": 0.9, "classification_reason": "r"}`},
		{"confidence out of range", `{"document_type": "project", "sub_category": "planning", "confidence_score": 1.5, "classification_reason": "r"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeLLM{responses: map[string]string{"Doc": tt.response}}
			classifier := New(client, &fakeRepo{}, false)

			_, err := classifier.Classify(context.Background(), doc("d1", "Doc"))
			require.Error(t, err)

			var respErr *ResponseError
			require.ErrorAs(t, err, &respErr)
			assert.Equal(t, tt.response, respErr.Raw)
		})
	}
}

func TestClassifyBatch_IsolatesFailures(t *testing.T) {
	client := &fakeLLM{responses: map[string]string{
		"One":   validResponse("project", "planning"),
		"Two":   validResponse("knowledge", "tutorial"),
		"Three": `garbage`,
		"Four":  validResponse("project", "bug_report"),
		"Five":  validResponse("knowledge", "case_study"),
	}}
	repo := &fakeRepo{}
	classifier := New(client, repo, false)

	docs := []types.Document{
		doc("d1", "One"), doc("d2", "Two"), doc("d3", "Three"), doc("d4", "Four"), doc("d5", "Five"),
	}
	results := classifier.ClassifyBatch(context.Background(), docs)

	require.Len(t, results, 4)
	assert.Equal(t, 5, client.calls)
	require.Contains(t, repo.failed, "d3")
	for _, r := range results {
		assert.NotEqual(t, "d3", r.DocumentID)
	}
}

func TestRun_SelectsClassifiesPersists(t *testing.T) {
	client := &fakeLLM{responses: map[string]string{"Only": validResponse("project", "research")}}
	repo := &fakeRepo{pending: []types.Document{doc("d1", "Only")}}
	classifier := New(client, repo, true)

	count, err := classifier.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, repo.persisted, 1)
	require.NotNil(t, repo.includeFailed)
	assert.True(t, *repo.includeFailed, "retryFailed should flow into the pending query")
}

func TestRun_NoPendingIsNoop(t *testing.T) {
	client := &fakeLLM{}
	repo := &fakeRepo{}
	classifier := New(client, repo, false)

	count, err := classifier.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, client.calls)
}
