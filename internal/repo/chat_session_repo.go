package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
)

type ChatSessionRepo struct {
	db *sql.DB
}

func NewChatSessionRepo(db *sql.DB) *ChatSessionRepo {
	return &ChatSessionRepo{db: db}
}

var chatSessionColumns = []string{"id", "user_id", "document_id", "session_name", "ctime", "mtime"}

func (r *ChatSessionRepo) Create(ctx context.Context, session *model.ChatSession) error {
	const query = `
		INSERT INTO chat_sessions (user_id, document_id, session_name, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query,
		session.UserID,
		session.DocumentID,
		session.SessionName,
		session.Ctime,
		session.Mtime,
	)
	return row.Scan(&session.ID)
}

// ListByDocument returns a document's sessions newest first.
func (r *ChatSessionRepo) ListByDocument(ctx context.Context, documentID int64) ([]model.ChatSession, error) {
	where := map[string]interface{}{
		"document_id": documentID,
		"_orderby":    "ctime desc, id desc",
	}
	sqlStr, args, err := builder.BuildSelect("chat_sessions", where, chatSessionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	sessions := make([]model.ChatSession, 0)
	for rows.Next() {
		var session model.ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.DocumentID, &session.SessionName, &session.Ctime, &session.Mtime); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// GetLatestByDocument returns the most recently created session for the
// document, or ErrNotFound when it has none.
func (r *ChatSessionRepo) GetLatestByDocument(ctx context.Context, documentID int64) (*model.ChatSession, error) {
	const query = `
		SELECT id, user_id, document_id, session_name, ctime, mtime
		FROM chat_sessions
		WHERE document_id = $1
		ORDER BY ctime DESC, id DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, documentID)
	var session model.ChatSession
	if err := row.Scan(&session.ID, &session.UserID, &session.DocumentID, &session.SessionName, &session.Ctime, &session.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetOwned resolves a session and verifies through the documents join that
// its parent document belongs to userID.
func (r *ChatSessionRepo) GetOwned(ctx context.Context, sessionID int64, userID string) (*model.ChatSession, error) {
	const query = `
		SELECT s.id, s.user_id, s.document_id, s.session_name, s.ctime, s.mtime
		FROM chat_sessions s
		INNER JOIN documents d ON s.document_id = d.id
		WHERE s.id = $1 AND d.user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, sessionID, userID)
	var session model.ChatSession
	if err := row.Scan(&session.ID, &session.UserID, &session.DocumentID, &session.SessionName, &session.Ctime, &session.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *ChatSessionRepo) DeleteTx(ctx context.Context, q dbutil.Execer, sessionID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ChatSessionRepo) DeleteByDocumentTx(ctx context.Context, q dbutil.Execer, documentID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM chat_sessions WHERE document_id = $1`, documentID)
	return err
}
