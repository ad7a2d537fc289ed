package repo

import (
	"context"
	"database/sql"

	"github.com/readvox/readvox/internal/model"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
)

type VideoJobRepo struct {
	db *sql.DB
}

func NewVideoJobRepo(db *sql.DB) *VideoJobRepo {
	return &VideoJobRepo{db: db}
}

func (r *VideoJobRepo) Create(ctx context.Context, job *model.VideoJob) error {
	const query = `
		INSERT INTO video_jobs (id, user_id, prompt, style, duration, include_audio, status, title, concept, video_url, error, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.Prompt,
		job.Style,
		job.Duration,
		job.IncludeAudio,
		job.Status,
		job.Title,
		job.Concept,
		job.VideoURL,
		job.Error,
		job.Ctime,
		job.Mtime,
	)
	return err
}

func (r *VideoJobRepo) GetByIDForUser(ctx context.Context, jobID string, userID string) (*model.VideoJob, error) {
	const query = `
		SELECT id, user_id, prompt, style, duration, include_audio, status, title, concept, video_url, error, ctime, mtime
		FROM video_jobs
		WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, jobID, userID)
	var job model.VideoJob
	if err := row.Scan(
		&job.ID, &job.UserID, &job.Prompt, &job.Style, &job.Duration, &job.IncludeAudio,
		&job.Status, &job.Title, &job.Concept, &job.VideoURL, &job.Error, &job.Ctime, &job.Mtime,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// VideoJobResult carries the fields the worker writes when a job settles.
type VideoJobResult struct {
	Title    string
	Concept  string
	VideoURL string
	Error    string
}

func (r *VideoJobRepo) UpdateStatus(ctx context.Context, jobID string, status string, res VideoJobResult, mtime int64) error {
	const query = `
		UPDATE video_jobs
		SET status = $1, title = $2, concept = $3, video_url = $4, error = $5, mtime = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query, status, res.Title, res.Concept, res.VideoURL, res.Error, mtime, jobID)
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

// DeleteBefore removes settled jobs created before cutoff and reports how
// many rows went away.
func (r *VideoJobRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `
		DELETE FROM video_jobs
		WHERE ctime < $1 AND status IN ($2, $3)
	`
	result, err := r.db.ExecContext(ctx, query, cutoff, model.VideoJobStatusCompleted, model.VideoJobStatusFailed)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
