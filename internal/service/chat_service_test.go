package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readvox/readvox/internal/repo"
)

func detail(id int64, question string, ctime int64, sessionID int64, sessionCtime int64, docID int64, title string) repo.ChatHistoryDetail {
	return repo.ChatHistoryDetail{
		ID:            id,
		Question:      question,
		Answer:        "a:" + question,
		Ctime:         ctime,
		SessionID:     sessionID,
		SessionName:   "session",
		SessionCtime:  sessionCtime,
		DocumentID:    docID,
		DocumentTitle: title,
		DocumentType:  "text",
	}
}

func TestGroupHistory_Empty(t *testing.T) {
	result := groupHistory(nil)
	require.NotNil(t, result)
	require.Empty(t, result.Documents)
	require.Zero(t, result.TotalDocuments)
	require.Zero(t, result.TotalSessions)
	require.Zero(t, result.TotalQuestions)
}

func TestGroupHistory_GroupsByDocumentAndSession(t *testing.T) {
	// Rows arrive newest first, interleaved across two documents.
	rows := []repo.ChatHistoryDetail{
		detail(6, "q6", 600, 30, 250, 2, "doc two"),
		detail(5, "q5", 500, 10, 100, 1, "doc one"),
		detail(4, "q4", 400, 30, 250, 2, "doc two"),
		detail(3, "q3", 300, 20, 200, 1, "doc one"),
		detail(2, "q2", 200, 10, 100, 1, "doc one"),
		detail(1, "q1", 100, 20, 200, 1, "doc one"),
	}
	result := groupHistory(rows)

	require.Equal(t, 2, result.TotalDocuments)
	require.Equal(t, 3, result.TotalSessions)
	require.Equal(t, 6, result.TotalQuestions)

	// Document with the latest activity first.
	require.Equal(t, int64(2), result.Documents[0].DocumentID)
	require.Equal(t, int64(1), result.Documents[1].DocumentID)

	// Sessions within a document are newest first by creation time.
	docOne := result.Documents[1]
	require.Len(t, docOne.Sessions, 2)
	require.Equal(t, int64(20), docOne.Sessions[0].SessionID)
	require.Equal(t, int64(10), docOne.Sessions[1].SessionID)

	// Entries keep the newest-first row order within their session.
	require.Len(t, docOne.Sessions[1].Entries, 2)
	require.Equal(t, int64(5), docOne.Sessions[1].Entries[0].ID)
	require.Equal(t, int64(2), docOne.Sessions[1].Entries[1].ID)
}

func TestGroupHistory_DefaultsEmptyDocumentTitle(t *testing.T) {
	rows := []repo.ChatHistoryDetail{
		detail(2, "q2", 200, 10, 100, 1, ""),
		detail(1, "q1", 100, 20, 150, 2, "named doc"),
	}
	result := groupHistory(rows)
	require.Len(t, result.Documents, 2)
	require.Equal(t, "Untitled Document", result.Documents[0].Title)
	require.Equal(t, "named doc", result.Documents[1].Title)
}

func TestGroupHistory_SessionCtimeTieBreaksOnID(t *testing.T) {
	rows := []repo.ChatHistoryDetail{
		detail(2, "q2", 200, 11, 100, 1, "doc"),
		detail(1, "q1", 100, 12, 100, 1, "doc"),
	}
	result := groupHistory(rows)
	require.Len(t, result.Documents, 1)
	sessions := result.Documents[0].Sessions
	require.Equal(t, int64(12), sessions[0].SessionID)
	require.Equal(t, int64(11), sessions[1].SessionID)
}
