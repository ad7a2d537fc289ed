package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
)

type EmbeddingRepo struct {
	db *sql.DB
}

func NewEmbeddingRepo(db *sql.DB) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

func (r *EmbeddingRepo) Save(ctx context.Context, emb *model.DocumentEmbedding) error {
	const query = `
		INSERT INTO document_embeddings (document_id, user_id, embedding, content_hash, mtime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			content_hash = EXCLUDED.content_hash,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query,
		emb.DocumentID,
		emb.UserID,
		pgvector.NewVector(emb.Embedding),
		emb.ContentHash,
		emb.Mtime,
	)
	return err
}

func (r *EmbeddingRepo) GetByDocID(ctx context.Context, documentID int64) (*model.DocumentEmbedding, error) {
	const query = `
		SELECT document_id, user_id, embedding, content_hash, mtime
		FROM document_embeddings
		WHERE document_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, documentID)
	var item model.DocumentEmbedding
	var embedding pgvector.Vector
	if err := row.Scan(&item.DocumentID, &item.UserID, &embedding, &item.ContentHash, &item.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	item.Embedding = embedding.Slice()
	return &item, nil
}

// ListNearest returns the owner's closest documents to the query vector by
// cosine distance, excluding excludeDocID when non-zero.
func (r *EmbeddingRepo) ListNearest(ctx context.Context, userID string, query []float32, limit int, excludeDocID int64) ([]int64, error) {
	const stmt = `
		SELECT document_id
		FROM document_embeddings
		WHERE user_id = $1 AND document_id <> $2
		ORDER BY embedding <=> $3
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, stmt, userID, excludeDocID, pgvector.NewVector(query), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *EmbeddingRepo) DeleteByDocumentTx(ctx context.Context, q dbutil.Execer, documentID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM document_embeddings WHERE document_id = $1`, documentID)
	return err
}
