package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []Document {
	return []Document{
		{
			ID:      "wildfire_doc",
			Version: "v1.0",
			Content: "# Wildfire Risk\nWildfire risk assessment requires defensible space. High wildfire risk properties need mitigation review.",
		},
		{
			ID:      "flood_doc",
			Version: "v2.1",
			Content: "# Flood Zones\nFlood risk evaluation uses FEMA flood zone maps. Elevation certificates are a requirement in high risk zones.",
		},
	}
}

func TestIngest_BuildsIndex(t *testing.T) {
	e := NewEngine()
	n, err := e.Ingest(testDocs())
	require.NoError(t, err)
	assert.Equal(t, n, e.Len())
	assert.Greater(t, n, 0)
}

func TestIngest_NoDocuments(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest(nil)
	assert.Error(t, err)
}

func TestIngest_RebuildReplacesIndex(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest(testDocs())
	require.NoError(t, err)

	_, err = e.Ingest(testDocs()[:1])
	require.NoError(t, err)

	summary := e.Summary()
	assert.Contains(t, summary, "wildfire_doc")
	assert.NotContains(t, summary, "flood_doc")
}

func TestQuery_RanksByRelevance(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest(testDocs())
	require.NoError(t, err)

	chunks, err := e.Query(context.Background(), "wildfire risk assessment defensible space", 2)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	assert.Equal(t, "wildfire_doc", chunks[0].DocID)
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i-1].RelevanceScore, chunks[i].RelevanceScore)
	}
}

func TestQuery_TopKCapsResults(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest(testDocs())
	require.NoError(t, err)

	chunks, err := e.Query(context.Background(), "risk", 1)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestQuery_EmptyIndex(t *testing.T) {
	e := NewEngine()
	_, err := e.Query(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestQuery_CancelledContext(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest(testDocs())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Query(ctx, "wildfire", 5)
	assert.Error(t, err)
}

func TestChunkMetadata(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest([]Document{{
		ID:       "doc1",
		Version:  "v3.0",
		Content:  "# Standards\nRating standard content with requirement keywords.",
		Metadata: map[string]string{"category": "rating"},
	}})
	require.NoError(t, err)

	chunks, err := e.Query(context.Background(), "rating standard", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, "doc1", c.DocID)
	assert.Equal(t, "v3.0", c.DocVersion)
	assert.Equal(t, "Standards", c.Section)
	assert.Contains(t, c.ChunkID, "doc1_Standards_0_")
	assert.Equal(t, "doc1:Standards", c.CitationKey())
	assert.Equal(t, "rating", c.Metadata["category"])
	assert.Equal(t, "v3.0", c.Metadata["doc_version"])
}

func TestSummary(t *testing.T) {
	e := NewEngine()
	_, err := e.Ingest(testDocs())
	require.NoError(t, err)

	summary := e.Summary()
	require.Contains(t, summary, "wildfire_doc")
	assert.Equal(t, []string{"Wildfire Risk"}, summary["wildfire_doc"].Sections)
	assert.Greater(t, summary["wildfire_doc"].ChunkCount, 0)
}

func TestDefaultDocuments(t *testing.T) {
	docs, err := DefaultDocuments()
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	ids := make(map[string]bool)
	for _, d := range docs {
		ids[d.ID] = true
		assert.NotEmpty(t, d.Content)
		assert.NotEmpty(t, d.Version)
	}
	assert.True(t, ids["property_eligibility"])
	assert.True(t, ids["wildfire_guidelines"])
	assert.True(t, ids["flood_guidelines"])
	assert.True(t, ids["rating_standards"])
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	doc := `---
doc_id: custom_doc
doc_version: v5.2
metadata:
  region: california
---

# Custom Rules
Custom underwriting requirement text.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.md"), []byte(doc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.md"), []byte("# Plain\nNo front matter here."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not markdown"), 0644))

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := make(map[string]Document)
	for _, d := range docs {
		byID[d.ID] = d
	}

	custom := byID["custom_doc"]
	assert.Equal(t, "v5.2", custom.Version)
	assert.Equal(t, "california", custom.Metadata["region"])
	assert.NotContains(t, custom.Content, "doc_id")
	assert.Contains(t, custom.Content, "# Custom Rules")

	plain := byID["plain"]
	assert.Equal(t, "v1.0", plain.Version)
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestEmbed_DeterministicAndNormalized(t *testing.T) {
	a := embed("wildfire risk assessment")
	b := embed("wildfire risk assessment")
	assert.Equal(t, a, b)

	assert.InDelta(t, 1.0, cosine(a, b), 0.0001)
}

func TestEmbed_DistinctTextsDiffer(t *testing.T) {
	a := embed("wildfire risk assessment")
	b := embed("flood elevation certificate")
	assert.Less(t, cosine(a, b), 0.99)
}

func TestTokenize(t *testing.T) {
	toks := tokenize("High-risk Wildfire zones, built 1939!")
	assert.Equal(t, []string{"high", "risk", "wildfire", "zones", "built", "1939"}, toks)
}
