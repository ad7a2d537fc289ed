package repo

import (
	"context"
	"database/sql"

	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
)

type ChatHistoryRepo struct {
	db *sql.DB
}

func NewChatHistoryRepo(db *sql.DB) *ChatHistoryRepo {
	return &ChatHistoryRepo{db: db}
}

func (r *ChatHistoryRepo) Append(ctx context.Context, entry *model.ChatHistory) error {
	const query = `
		INSERT INTO chat_history (session_id, question, answer, suggested_question, ctime)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query,
		entry.SessionID,
		entry.Question,
		entry.Answer,
		entry.SuggestedQuestion,
		entry.Ctime,
	)
	return row.Scan(&entry.ID)
}

// ListBySession returns a session's entries oldest first.
func (r *ChatHistoryRepo) ListBySession(ctx context.Context, sessionID int64) ([]model.ChatHistory, error) {
	const query = `
		SELECT id, session_id, question, answer, suggested_question, ctime
		FROM chat_history
		WHERE session_id = $1
		ORDER BY ctime ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	entries := make([]model.ChatHistory, 0)
	for rows.Next() {
		var entry model.ChatHistory
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Question, &entry.Answer, &entry.SuggestedQuestion, &entry.Ctime); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ChatHistoryDetail is one flat row of the history ⋈ session ⋈ document
// join that feeds the user history aggregation.
type ChatHistoryDetail struct {
	ID                int64
	Question          string
	Answer            string
	SuggestedQuestion bool
	Ctime             int64
	SessionID         int64
	SessionName       string
	SessionCtime      int64
	DocumentID        int64
	DocumentTitle     string
	DocumentType      string
	FileName          string
}

// ListDetailsByUser joins chat_history → chat_sessions → documents for one
// owner, newest entries first. Grouping into the document/session tree is
// left to the service layer.
func (r *ChatHistoryRepo) ListDetailsByUser(ctx context.Context, userID string) ([]ChatHistoryDetail, error) {
	const query = `
		SELECT h.id, h.question, h.answer, h.suggested_question, h.ctime,
		       s.id, s.session_name, s.ctime,
		       d.id, d.title, d.document_type, d.file_name
		FROM chat_history h
		INNER JOIN chat_sessions s ON h.session_id = s.id
		INNER JOIN documents d ON s.document_id = d.id
		WHERE d.user_id = $1
		ORDER BY h.ctime DESC, h.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	details := make([]ChatHistoryDetail, 0)
	for rows.Next() {
		var item ChatHistoryDetail
		if err := rows.Scan(
			&item.ID, &item.Question, &item.Answer, &item.SuggestedQuestion, &item.Ctime,
			&item.SessionID, &item.SessionName, &item.SessionCtime,
			&item.DocumentID, &item.DocumentTitle, &item.DocumentType, &item.FileName,
		); err != nil {
			return nil, err
		}
		details = append(details, item)
	}
	return details, rows.Err()
}

func (r *ChatHistoryRepo) DeleteBySessionTx(ctx context.Context, q dbutil.Execer, sessionID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM chat_history WHERE session_id = $1`, sessionID)
	return err
}

func (r *ChatHistoryRepo) DeleteByDocumentTx(ctx context.Context, q dbutil.Execer, documentID int64) error {
	const query = `
		DELETE FROM chat_history
		WHERE session_id IN (SELECT id FROM chat_sessions WHERE document_id = $1)
	`
	_, err := q.ExecContext(ctx, query, documentID)
	return err
}
