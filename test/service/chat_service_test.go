package service_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readvox/readvox/internal/model"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
	"github.com/readvox/readvox/internal/service"
	"github.com/readvox/readvox/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

type fixture struct {
	docs        *service.DocumentService
	chats       *service.ChatService
	suggestions *service.SuggestionService
	userID      string
}

func newFixture(t *testing.T) (*fixture, func()) {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)

	userRepo := repo.NewUserRepo(db)
	docRepo := repo.NewDocumentRepo(db)
	sessionRepo := repo.NewChatSessionRepo(db)
	historyRepo := repo.NewChatHistoryRepo(db)
	suggestionRepo := repo.NewSuggestedQuestionRepo(db)
	embeddingRepo := repo.NewEmbeddingRepo(db)

	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newTestID(),
		Name:         "tester",
		Email:        newTestID() + "@example.com",
		PasswordHash: "x",
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, userRepo.Create(context.Background(), user))

	return &fixture{
		docs:        service.NewDocumentService(db, docRepo, sessionRepo, historyRepo, suggestionRepo, embeddingRepo, nil),
		chats:       service.NewChatService(db, docRepo, sessionRepo, historyRepo),
		suggestions: service.NewSuggestionService(docRepo, suggestionRepo, nil),
		userID:      user.ID,
	}, cleanup
}

func TestDocumentService_SaveDefaults(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	doc, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Content: "hello world content"})
	require.NoError(t, err)
	require.NotZero(t, doc.ID)
	require.Contains(t, doc.Title, "Document - ")
	require.Equal(t, model.DocumentTypeText, doc.DocumentType)
	require.Equal(t, len([]rune("hello world content")), doc.ContentLength)

	_, err = f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Content: "   "})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestChatService_EnsureSession(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	doc, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Content: "some document content"})
	require.NoError(t, err)

	// First call creates a session with a default name.
	session, err := f.chats.EnsureSession(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	require.Contains(t, session.SessionName, "Chat - ")

	// Second call reuses it.
	again, err := f.chats.EnsureSession(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, again.ID)

	// Foreign documents are invisible.
	_, err = f.chats.EnsureSession(ctx, newTestID(), doc.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestChatService_UserHistoryAggregation(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	var sessionCount, entryCount int
	for d := 0; d < 2; d++ {
		doc, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{
			Title:   fmt.Sprintf("doc-%d", d),
			Content: "enough content for a document",
		})
		require.NoError(t, err)
		for s := 0; s < 2; s++ {
			session, err := f.chats.CreateSession(ctx, f.userID, doc.ID, fmt.Sprintf("session-%d-%d", d, s))
			require.NoError(t, err)
			sessionCount++
			for e := 0; e < 3; e++ {
				_, err := f.chats.AppendHistory(ctx, f.userID, session.ID, fmt.Sprintf("q-%d", e), "answer", false)
				require.NoError(t, err)
				entryCount++
			}
		}
	}

	history, err := f.chats.UserHistory(ctx, f.userID)
	require.NoError(t, err)
	require.Equal(t, 2, history.TotalDocuments)
	require.Equal(t, sessionCount, history.TotalSessions)
	require.Equal(t, entryCount, history.TotalQuestions)
	require.Len(t, history.Documents, 2)
	for _, doc := range history.Documents {
		require.Len(t, doc.Sessions, 2)
		for _, session := range doc.Sessions {
			require.Len(t, session.Entries, 3)
		}
	}
}

func TestDocumentService_DeleteCascades(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	doc, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Content: "document to be deleted"})
	require.NoError(t, err)
	session, err := f.chats.CreateSession(ctx, f.userID, doc.ID, "s")
	require.NoError(t, err)
	_, err = f.chats.AppendHistory(ctx, f.userID, session.ID, "q?", "a", false)
	require.NoError(t, err)
	_, err = f.suggestions.Replace(ctx, f.userID, doc.ID, []string{"q1?", "q2?"})
	require.NoError(t, err)

	require.NoError(t, f.docs.Delete(ctx, f.userID, doc.ID))

	_, err = f.docs.Get(ctx, f.userID, doc.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = f.chats.History(ctx, f.userID, session.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	history, err := f.chats.UserHistory(ctx, f.userID)
	require.NoError(t, err)
	require.Zero(t, history.TotalQuestions)
}

func TestChatService_DeleteSessionKeepsDocument(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	doc, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Content: "document that stays"})
	require.NoError(t, err)
	session, err := f.chats.CreateSession(ctx, f.userID, doc.ID, "s")
	require.NoError(t, err)
	_, err = f.chats.AppendHistory(ctx, f.userID, session.ID, "q?", "a", false)
	require.NoError(t, err)

	require.NoError(t, f.chats.DeleteSession(ctx, f.userID, session.ID))

	_, err = f.docs.Get(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	sessions, err := f.chats.ListSessions(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestSuggestionService_FallbackWithoutProvider(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	doc, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Content: "short document content"})
	require.NoError(t, err)

	// No AI provider wired: the static fallback set gets persisted.
	stored, err := f.suggestions.GetOrGenerate(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	for i, item := range stored {
		require.Equal(t, i+1, item.QuestionOrder)
	}

	// Second call serves the stored set.
	again, err := f.suggestions.GetOrGenerate(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, stored, again)
}

func TestDocumentService_SearchWithinWindow(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	_, err := f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Title: "alpha notes", Content: "about apples"})
	require.NoError(t, err)
	_, err = f.docs.Save(ctx, f.userID, service.SaveDocumentInput{Title: "beta notes", Content: "about bananas"})
	require.NoError(t, err)
	_, err = f.docs.Save(ctx, f.userID, service.SaveDocumentInput{
		Title:    "scanned upload",
		Content:  "tables and figures",
		FileName: "quarterly-report.pdf",
	})
	require.NoError(t, err)

	docs, err := f.docs.Search(ctx, f.userID, "apples", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "alpha notes", docs[0].Title)

	// A document is findable by file name alone.
	docs, err = f.docs.Search(ctx, f.userID, "quarterly", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "quarterly-report.pdf", docs[0].FileName)
}
