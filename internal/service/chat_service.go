package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
)

type ChatService struct {
	db       *sql.DB
	docs     *repo.DocumentRepo
	sessions *repo.ChatSessionRepo
	history  *repo.ChatHistoryRepo
}

func NewChatService(db *sql.DB, docs *repo.DocumentRepo, sessions *repo.ChatSessionRepo, history *repo.ChatHistoryRepo) *ChatService {
	return &ChatService{db: db, docs: docs, sessions: sessions, history: history}
}

func (s *ChatService) CreateSession(ctx context.Context, userID string, docID int64, name string) (*model.ChatSession, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Chat - " + time.Now().Format("2006-01-02 15:04")
	}
	now := timeutil.NowUnix()
	session := &model.ChatSession{
		UserID:      userID,
		DocumentID:  docID,
		SessionName: name,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErr.Storage(err)
	}
	return session, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID string, docID int64) ([]model.ChatSession, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return sessions, nil
}

// DeleteSession removes the session and its history together. Ownership is
// checked through the parent document.
func (s *ChatService) DeleteSession(ctx context.Context, userID string, sessionID int64) error {
	if _, err := s.sessions.GetOwned(ctx, sessionID, userID); err != nil {
		return err
	}
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.history.DeleteBySessionTx(ctx, tx, sessionID); err != nil {
			return err
		}
		return s.sessions.DeleteTx(ctx, tx, sessionID)
	})
}

// EnsureSession returns the document's most recently created session,
// creating one with a default name when the document has none yet.
func (s *ChatService) EnsureSession(ctx context.Context, userID string, docID int64) (*model.ChatSession, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	session, err := s.sessions.GetLatestByDocument(ctx, docID)
	if err == nil {
		return session, nil
	}
	if !appErr.IsNotFound(err) {
		return nil, appErr.Storage(err)
	}
	return s.CreateSession(ctx, userID, docID, "")
}

func (s *ChatService) AppendHistory(ctx context.Context, userID string, sessionID int64, question, answer string, suggested bool) (*model.ChatHistory, error) {
	if _, err := s.sessions.GetOwned(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	entry := &model.ChatHistory{
		SessionID:         sessionID,
		Question:          question,
		Answer:            answer,
		SuggestedQuestion: suggested,
		Ctime:             timeutil.NowUnix(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, appErr.Storage(err)
	}
	return entry, nil
}

func (s *ChatService) History(ctx context.Context, userID string, sessionID int64) ([]model.ChatHistory, error) {
	if _, err := s.sessions.GetOwned(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return entries, nil
}

type HistoryEntry struct {
	ID                int64  `json:"id"`
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	SuggestedQuestion bool   `json:"suggested_question"`
	Ctime             int64  `json:"ctime"`
}

type SessionHistory struct {
	SessionID   int64          `json:"session_id"`
	SessionName string         `json:"session_name"`
	Ctime       int64          `json:"ctime"`
	Entries     []HistoryEntry `json:"entries"`
}

type DocumentHistory struct {
	DocumentID   int64            `json:"document_id"`
	Title        string           `json:"title"`
	DocumentType string           `json:"document_type"`
	FileName     string           `json:"file_name,omitempty"`
	Sessions     []SessionHistory `json:"sessions"`
}

type UserChatHistory struct {
	Documents      []DocumentHistory `json:"documents"`
	TotalDocuments int               `json:"total_documents"`
	TotalSessions  int               `json:"total_sessions"`
	TotalQuestions int               `json:"total_questions"`
}

// UserHistory returns the caller's entire chat history grouped by document
// and session, with per-level totals.
func (s *ChatService) UserHistory(ctx context.Context, userID string) (*UserChatHistory, error) {
	details, err := s.history.ListDetailsByUser(ctx, userID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return groupHistory(details), nil
}

// groupHistory folds the flat newest-first join rows into the
// document/session tree. Documents keep first-seen order, so the document
// with the latest activity comes first. Sessions inside a document are
// re-sorted newest first by their own creation time.
func groupHistory(details []repo.ChatHistoryDetail) *UserChatHistory {
	result := &UserChatHistory{Documents: make([]DocumentHistory, 0)}
	docIndex := make(map[int64]int)
	sessionIndex := make(map[int64]map[int64]int)
	for _, row := range details {
		di, ok := docIndex[row.DocumentID]
		if !ok {
			di = len(result.Documents)
			docIndex[row.DocumentID] = di
			sessionIndex[row.DocumentID] = make(map[int64]int)
			title := row.DocumentTitle
			if title == "" {
				title = "Untitled Document"
			}
			result.Documents = append(result.Documents, DocumentHistory{
				DocumentID:   row.DocumentID,
				Title:        title,
				DocumentType: row.DocumentType,
				FileName:     row.FileName,
				Sessions:     make([]SessionHistory, 0),
			})
		}
		doc := &result.Documents[di]
		si, ok := sessionIndex[row.DocumentID][row.SessionID]
		if !ok {
			si = len(doc.Sessions)
			sessionIndex[row.DocumentID][row.SessionID] = si
			doc.Sessions = append(doc.Sessions, SessionHistory{
				SessionID:   row.SessionID,
				SessionName: row.SessionName,
				Ctime:       row.SessionCtime,
				Entries:     make([]HistoryEntry, 0),
			})
			result.TotalSessions++
		}
		doc.Sessions[si].Entries = append(doc.Sessions[si].Entries, HistoryEntry{
			ID:                row.ID,
			Question:          row.Question,
			Answer:            row.Answer,
			SuggestedQuestion: row.SuggestedQuestion,
			Ctime:             row.Ctime,
		})
		result.TotalQuestions++
	}
	result.TotalDocuments = len(result.Documents)
	for i := range result.Documents {
		sessions := result.Documents[i].Sessions
		sort.SliceStable(sessions, func(a, b int) bool {
			if sessions[a].Ctime != sessions[b].Ctime {
				return sessions[a].Ctime > sessions[b].Ctime
			}
			return sessions[a].SessionID > sessions[b].SessionID
		})
	}
	return result
}
