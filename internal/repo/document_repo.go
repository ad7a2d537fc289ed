package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

var documentColumns = []string{"id", "user_id", "title", "content", "summary", "content_length", "document_type", "file_name", "ctime", "mtime"}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	const query = `
		INSERT INTO documents (user_id, title, content, summary, content_length, document_type, file_name, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query,
		doc.UserID,
		doc.Title,
		doc.Content,
		doc.Summary,
		doc.ContentLength,
		doc.DocumentType,
		doc.FileName,
		doc.Ctime,
		doc.Mtime,
	)
	return row.Scan(&doc.ID)
}

// DocumentUpdate carries the fields a partial update may touch; nil means
// leave the column as-is.
type DocumentUpdate struct {
	Title         *string
	Content       *string
	ContentLength *int
	Summary       *string
	DocumentType  *string
	FileName      *string
}

func (r *DocumentRepo) Update(ctx context.Context, docID int64, userID string, upd DocumentUpdate, mtime int64) error {
	update := map[string]interface{}{
		"mtime": mtime,
	}
	if upd.Title != nil {
		update["title"] = *upd.Title
	}
	if upd.Content != nil {
		update["content"] = *upd.Content
	}
	if upd.ContentLength != nil {
		update["content_length"] = *upd.ContentLength
	}
	if upd.Summary != nil {
		update["summary"] = *upd.Summary
	}
	if upd.DocumentType != nil {
		update["document_type"] = *upd.DocumentType
	}
	if upd.FileName != nil {
		update["file_name"] = *upd.FileName
	}
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
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

func (r *DocumentRepo) GetByID(ctx context.Context, userID string, docID int64) (*model.Document, error) {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var doc model.Document
	if err := scanDocument(rows, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the owner's documents newest first. limit 0 means no limit.
func (r *DocumentRepo) List(ctx context.Context, userID string, limit uint) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc, id desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, limit}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	docs := make([]model.Document, 0)
	for rows.Next() {
		var doc model.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) ListByIDs(ctx context.Context, userID string, docIDs []int64) ([]model.Document, error) {
	if len(docIDs) == 0 {
		return []model.Document{}, nil
	}
	ids := make([]interface{}, 0, len(docIDs))
	for _, id := range docIDs {
		ids = append(ids, id)
	}
	where := map[string]interface{}{
		"user_id":     userID,
		"_custom_ids": builder.In{"id": ids},
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	docs := make([]model.Document, 0)
	for rows.Next() {
		var doc model.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteTx removes the document row itself; dependent rows are removed by
// the other repos' *Tx steps inside the same transaction.
func (r *DocumentRepo) DeleteTx(ctx context.Context, q dbutil.Execer, docID int64, userID string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, docID, userID)
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

type docScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(s docScanner, doc *model.Document) error {
	return s.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Content,
		&doc.Summary,
		&doc.ContentLength,
		&doc.DocumentType,
		&doc.FileName,
		&doc.Ctime,
		&doc.Mtime,
	)
}
