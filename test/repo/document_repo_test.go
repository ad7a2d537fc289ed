package repo_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readvox/readvox/internal/model"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
	"github.com/readvox/readvox/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func createTestUser(t *testing.T, users *repo.UserRepo) *model.User {
	t.Helper()
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newTestID(),
		Name:         "tester",
		Email:        newTestID() + "@example.com",
		PasswordHash: "x",
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createTestDocument(t *testing.T, docs *repo.DocumentRepo, userID, title, content string) *model.Document {
	t.Helper()
	now := timeutil.NowUnix()
	doc := &model.Document{
		UserID:        userID,
		Title:         title,
		Content:       content,
		ContentLength: len([]rune(content)),
		DocumentType:  model.DocumentTypeText,
		Ctime:         now,
		Mtime:         now,
	}
	require.NoError(t, docs.Create(context.Background(), doc))
	require.NotZero(t, doc.ID)
	return doc
}

func TestUserRepo_CreateConflict(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users)

	dup := &model.User{
		ID:           newTestID(),
		Name:         "dup",
		Email:        user.Email,
		PasswordHash: "x",
		Ctime:        user.Ctime,
		Mtime:        user.Mtime,
	}
	err := users.Create(ctx, dup)
	require.ErrorIs(t, err, appErr.ErrConflict)

	loaded, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, loaded.ID)
}

func TestDocumentRepo_CRUD(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(db)
	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users)
	doc := createTestDocument(t, docs, user.ID, "first", "some content here")

	loaded, err := docs.GetByID(ctx, user.ID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "first", loaded.Title)
	require.Equal(t, len([]rune("some content here")), loaded.ContentLength)

	// Another user cannot see it.
	_, err = docs.GetByID(ctx, newTestID(), doc.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	newTitle := "renamed"
	require.NoError(t, docs.Update(ctx, doc.ID, user.ID, repo.DocumentUpdate{Title: &newTitle}, timeutil.NowUnix()))
	loaded, err = docs.GetByID(ctx, user.ID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", loaded.Title)

	err = docs.Update(ctx, doc.ID, newTestID(), repo.DocumentUpdate{Title: &newTitle}, timeutil.NowUnix())
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentRepo_ListNewestFirst(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(db)
	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users)
	first := createTestDocument(t, docs, user.ID, "one", "content one")
	second := createTestDocument(t, docs, user.ID, "two", "content two")

	items, err := docs.List(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Same ctime second, so id breaks the tie: newest insert first.
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, first.ID, items[1].ID)

	items, err = docs.List(ctx, user.ID, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, second.ID, items[0].ID)
}

func TestSuggestedQuestionRepo_ReplaceAll(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(db)
	docs := repo.NewDocumentRepo(db)
	suggestions := repo.NewSuggestedQuestionRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users)
	doc := createTestDocument(t, docs, user.ID, "doc", "content")

	require.NoError(t, suggestions.ReplaceAll(ctx, doc.ID, []string{"q1?", "q2?", "q3?"}, timeutil.NowUnix()))
	stored, err := suggestions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, item := range stored {
		require.Equal(t, i+1, item.QuestionOrder)
	}
	require.Equal(t, "q1?", stored[0].Question)

	// Replacing swaps the whole set.
	require.NoError(t, suggestions.ReplaceAll(ctx, doc.ID, []string{"new?"}, timeutil.NowUnix()))
	stored, err = suggestions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "new?", stored[0].Question)
	require.Equal(t, 1, stored[0].QuestionOrder)
}

func TestChatSessionRepo_OwnershipJoin(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(db)
	docs := repo.NewDocumentRepo(db)
	sessions := repo.NewChatSessionRepo(db)
	ctx := context.Background()

	owner := createTestUser(t, users)
	other := createTestUser(t, users)
	doc := createTestDocument(t, docs, owner.ID, "doc", "content")

	now := timeutil.NowUnix()
	session := &model.ChatSession{UserID: owner.ID, DocumentID: doc.ID, SessionName: "s1", Ctime: now, Mtime: now}
	require.NoError(t, sessions.Create(ctx, session))

	got, err := sessions.GetOwned(ctx, session.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, got.ID)

	_, err = sessions.GetOwned(ctx, session.ID, other.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	latest, err := sessions.GetLatestByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, latest.ID)
}

func TestVideoJobRepo_Lifecycle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(db)
	jobs := repo.NewVideoJobRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users)
	now := timeutil.NowUnix()
	job := &model.VideoJob{
		ID:       newTestID(),
		UserID:   user.ID,
		Prompt:   "a rocket launch",
		Style:    model.VideoStyleDesktop,
		Duration: 30,
		Status:   model.VideoJobStatusQueued,
		Ctime:    now,
		Mtime:    now,
	}
	require.NoError(t, jobs.Create(ctx, job))

	loaded, err := jobs.GetByIDForUser(ctx, job.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, model.VideoJobStatusQueued, loaded.Status)

	_, err = jobs.GetByIDForUser(ctx, job.ID, newTestID())
	require.ErrorIs(t, err, appErr.ErrNotFound)

	res := repo.VideoJobResult{Title: "Launch", Concept: "a concept"}
	require.NoError(t, jobs.UpdateStatus(ctx, job.ID, model.VideoJobStatusCompleted, res, timeutil.NowUnix()))
	loaded, err = jobs.GetByIDForUser(ctx, job.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, model.VideoJobStatusCompleted, loaded.Status)
	require.Equal(t, "Launch", loaded.Title)

	removed, err := jobs.DeleteBefore(ctx, timeutil.NowUnix()+1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, removed, int64(1))
}
