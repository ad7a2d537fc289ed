package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readvox/readvox/internal/model"
)

func TestFilterDocuments(t *testing.T) {
	docs := []model.Document{
		{ID: 1, Title: "Go Patterns", Content: "structs and interfaces"},
		{ID: 2, Title: "Cooking", Content: "how to bake bread"},
		{ID: 3, Title: "notes", Content: "goroutines and channels"},
		{ID: 4, Title: "scanned upload", Content: "figures only", FileName: "Quarterly-Report.pdf"},
	}

	matched := filterDocuments(docs, "go")
	require.Len(t, matched, 2)
	require.Equal(t, int64(1), matched[0].ID)
	require.Equal(t, int64(3), matched[1].ID)

	matched = filterDocuments(docs, "BREAD")
	require.Len(t, matched, 1)
	require.Equal(t, int64(2), matched[0].ID)

	// File name alone is enough to match.
	matched = filterDocuments(docs, "quarterly")
	require.Len(t, matched, 1)
	require.Equal(t, int64(4), matched[0].ID)

	require.Empty(t, filterDocuments(docs, "quantum"))

	// Blank query keeps everything.
	require.Len(t, filterDocuments(docs, "   "), 4)
}
