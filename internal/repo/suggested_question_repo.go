package repo

import (
	"context"
	"database/sql"

	"github.com/readvox/readvox/internal/model"
	"github.com/readvox/readvox/internal/pkg/dbutil"
)

type SuggestedQuestionRepo struct {
	db *sql.DB
}

func NewSuggestedQuestionRepo(db *sql.DB) *SuggestedQuestionRepo {
	return &SuggestedQuestionRepo{db: db}
}

// ReplaceAll swaps the document's suggestion set for the given questions,
// numbering them from 1, inside one transaction so a failure cannot leave
// the document with an empty set.
func (r *SuggestedQuestionRepo) ReplaceAll(ctx context.Context, documentID int64, questions []string, ctime int64) error {
	return dbutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM suggested_questions WHERE document_id = $1`, documentID); err != nil {
			return err
		}
		const insert = `
			INSERT INTO suggested_questions (document_id, question, question_order, ctime)
			VALUES ($1, $2, $3, $4)
		`
		for i, question := range questions {
			if _, err := tx.ExecContext(ctx, insert, documentID, question, i+1, ctime); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByDocument returns the stored questions in their explicit order.
func (r *SuggestedQuestionRepo) ListByDocument(ctx context.Context, documentID int64) ([]model.SuggestedQuestion, error) {
	const query = `
		SELECT id, document_id, question, question_order, ctime
		FROM suggested_questions
		WHERE document_id = $1
		ORDER BY question_order ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	questions := make([]model.SuggestedQuestion, 0)
	for rows.Next() {
		var q model.SuggestedQuestion
		if err := rows.Scan(&q.ID, &q.DocumentID, &q.Question, &q.QuestionOrder, &q.Ctime); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *SuggestedQuestionRepo) DeleteByDocumentTx(ctx context.Context, q dbutil.Execer, documentID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM suggested_questions WHERE document_id = $1`, documentID)
	return err
}
