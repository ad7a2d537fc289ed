package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/readvox/readvox/internal/ai"
	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
)

const defaultListLimit = 10

type DocumentService struct {
	db          *sql.DB
	docs        *repo.DocumentRepo
	sessions    *repo.ChatSessionRepo
	history     *repo.ChatHistoryRepo
	suggestions *repo.SuggestedQuestionRepo
	embeddings  *repo.EmbeddingRepo
	aiManager   *ai.Manager
	markdown    goldmark.Markdown
}

func NewDocumentService(
	db *sql.DB,
	docs *repo.DocumentRepo,
	sessions *repo.ChatSessionRepo,
	history *repo.ChatHistoryRepo,
	suggestions *repo.SuggestedQuestionRepo,
	embeddings *repo.EmbeddingRepo,
	aiManager *ai.Manager,
) *DocumentService {
	return &DocumentService{
		db:          db,
		docs:        docs,
		sessions:    sessions,
		history:     history,
		suggestions: suggestions,
		embeddings:  embeddings,
		aiManager:   aiManager,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

type SaveDocumentInput struct {
	Title        string
	Content      string
	Summary      string
	DocumentType string
	FileName     string
}

func (s *DocumentService) Save(ctx context.Context, userID string, input SaveDocumentInput) (*model.Document, error) {
	content := input.Content
	if strings.TrimSpace(content) == "" {
		return nil, appErr.Invalid("content is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Document - " + time.Now().Format("2006-01-02")
	}
	docType := strings.TrimSpace(input.DocumentType)
	if docType == "" {
		docType = model.DocumentTypeText
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		UserID:        userID,
		Title:         title,
		Content:       content,
		Summary:       input.Summary,
		ContentLength: utf8.RuneCountInString(content),
		DocumentType:  docType,
		FileName:      input.FileName,
		Ctime:         now,
		Mtime:         now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, appErr.Storage(err)
	}
	s.syncEmbeddingAsync(doc.ID, userID, content)
	return doc, nil
}

func (s *DocumentService) Update(ctx context.Context, userID string, docID int64, upd repo.DocumentUpdate) (*model.Document, error) {
	if upd.Content != nil {
		if strings.TrimSpace(*upd.Content) == "" {
			return nil, appErr.Invalid("content cannot be empty")
		}
		length := utf8.RuneCountInString(*upd.Content)
		upd.ContentLength = &length
	}
	if err := s.docs.Update(ctx, docID, userID, upd, timeutil.NowUnix()); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if upd.Content != nil {
		s.syncEmbeddingAsync(doc.ID, userID, doc.Content)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, userID string, docID int64) (*model.Document, error) {
	return s.docs.GetByID(ctx, userID, docID)
}

// GetWithSessions loads a document together with its chat sessions, newest
// session first.
func (s *DocumentService) GetWithSessions(ctx context.Context, userID string, docID int64) (*model.Document, []model.ChatSession, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := s.sessions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, nil, appErr.Storage(err)
	}
	return doc, sessions, nil
}

func (s *DocumentService) List(ctx context.Context, userID string, limit uint) ([]model.Document, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	docs, err := s.docs.List(ctx, userID, limit)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return docs, nil
}

// Search fetches the newest documents up to limit and then filters them by
// a case-insensitive substring match on title, content and file name.
// Matches outside the fetched window are not found.
func (s *DocumentService) Search(ctx context.Context, userID string, query string, limit uint) ([]model.Document, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	docs, err := s.docs.List(ctx, userID, limit)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return filterDocuments(docs, query), nil
}

func filterDocuments(docs []model.Document, query string) []model.Document {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return docs
	}
	matched := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Content), needle) ||
			strings.Contains(strings.ToLower(doc.FileName), needle) {
			matched = append(matched, doc)
		}
	}
	return matched
}

// Delete removes a document and everything hanging off it in one
// transaction: history entries, sessions, suggested questions, the
// embedding, then the document row itself.
func (s *DocumentService) Delete(ctx context.Context, userID string, docID int64) error {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return err
	}
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.history.DeleteByDocumentTx(ctx, tx, docID); err != nil {
			return err
		}
		if err := s.sessions.DeleteByDocumentTx(ctx, tx, docID); err != nil {
			return err
		}
		if err := s.suggestions.DeleteByDocumentTx(ctx, tx, docID); err != nil {
			return err
		}
		if err := s.embeddings.DeleteByDocumentTx(ctx, tx, docID); err != nil {
			return err
		}
		return s.docs.DeleteTx(ctx, tx, docID, userID)
	})
}

// ExportHTML renders the document content as a standalone HTML page.
func (s *DocumentService) ExportHTML(ctx context.Context, userID string, docID int64) (string, []byte, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return "", nil, err
	}
	var body bytes.Buffer
	if err := s.markdown.Convert([]byte(doc.Content), &body); err != nil {
		return "", nil, fmt.Errorf("render document: %w", err)
	}
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<h1>%s</h1>
%s
</body>
</html>
`, html.EscapeString(doc.Title), html.EscapeString(doc.Title), body.String())
	return doc.Title, []byte(page), nil
}

// Related returns the owner's documents closest to the given one by
// embedding distance.
func (s *DocumentService) Related(ctx context.Context, userID string, docID int64, limit int) ([]model.Document, error) {
	if s.aiManager == nil {
		return []model.Document{}, nil
	}
	if limit <= 0 {
		limit = 5
	}
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	emb, err := s.embeddings.GetByDocID(ctx, docID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return []model.Document{}, nil
		}
		return nil, appErr.Storage(err)
	}
	ids, err := s.embeddings.ListNearest(ctx, userID, emb.Embedding, limit, docID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	docs, err := s.docs.ListByIDs(ctx, userID, ids)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	byID := make(map[int64]model.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	ordered := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}

// SyncEmbedding recomputes and stores the document embedding when the
// content hash changed.
func (s *DocumentService) SyncEmbedding(ctx context.Context, userID string, docID int64, content string) error {
	if s.aiManager == nil {
		return nil
	}
	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])
	existing, err := s.embeddings.GetByDocID(ctx, docID)
	if err == nil && existing.ContentHash == hash {
		return nil
	}
	values, err := s.aiManager.Embed(ctx, content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	return s.embeddings.Save(ctx, &model.DocumentEmbedding{
		DocumentID:  docID,
		UserID:      userID,
		Embedding:   values,
		ContentHash: hash,
		Mtime:       timeutil.NowUnix(),
	})
}

// syncEmbeddingAsync refreshes the embedding off the request path. Failures
// only log; document writes never depend on the AI provider.
func (s *DocumentService) syncEmbeddingAsync(docID int64, userID string, content string) {
	if s.aiManager == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.SyncEmbedding(ctx, userID, docID, content); err != nil {
			logutil.GetLogger(ctx).Warn("sync document embedding failed",
				zap.Int64("document_id", docID),
				zap.Error(err),
			)
		}
	}()
}
