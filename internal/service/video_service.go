package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/readvox/readvox/internal/model"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
)

const (
	maxVideoPromptChars = 1000
	minVideoDuration    = 5
	maxVideoDuration    = 300

	videoJobTimeout = 5 * time.Minute
)

type VideoService struct {
	jobs   *repo.VideoJobRepo
	ai     *AIService
	jobTTL time.Duration
}

func NewVideoService(jobs *repo.VideoJobRepo, ai *AIService, jobTTL time.Duration) *VideoService {
	return &VideoService{jobs: jobs, ai: ai, jobTTL: jobTTL}
}

type SubmitVideoInput struct {
	Prompt       string
	Style        string
	Duration     int
	IncludeAudio bool
}

// Submit validates the request, persists a queued job row and kicks off the
// concept generation in the background. The job id is returned immediately
// so the caller can poll for status.
func (s *VideoService) Submit(ctx context.Context, userID string, input SubmitVideoInput) (*model.VideoJob, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, appErr.Invalid("prompt is required")
	}
	if utf8.RuneCountInString(prompt) > maxVideoPromptChars {
		return nil, appErr.Invalid("prompt is too long")
	}
	style := strings.TrimSpace(input.Style)
	if style == "" {
		style = model.VideoStyleDesktop
	}
	if style != model.VideoStyleMobile && style != model.VideoStyleDesktop {
		return nil, appErr.Invalid("unknown video style")
	}
	duration := input.Duration
	if duration == 0 {
		duration = 30
	}
	if duration < minVideoDuration || duration > maxVideoDuration {
		return nil, appErr.Invalid("duration out of range")
	}
	now := timeutil.NowUnix()
	job := &model.VideoJob{
		ID:           newID(),
		UserID:       userID,
		Prompt:       prompt,
		Style:        style,
		Duration:     duration,
		IncludeAudio: input.IncludeAudio,
		Status:       model.VideoJobStatusQueued,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErr.Storage(err)
	}
	go s.process(job)
	return job, nil
}

func (s *VideoService) Status(ctx context.Context, userID string, jobID string) (*model.VideoJob, error) {
	return s.jobs.GetByIDForUser(ctx, jobID, userID)
}

// Purge deletes settled jobs older than the configured TTL and reports how
// many were removed.
func (s *VideoService) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.jobTTL).Unix()
	return s.jobs.DeleteBefore(ctx, cutoff)
}

// process runs off the request path. The job row is the only channel back
// to the caller, so every outcome ends in an UpdateStatus write.
func (s *VideoService) process(job *model.VideoJob) {
	ctx, cancel := context.WithTimeout(context.Background(), videoJobTimeout)
	defer cancel()
	logger := logutil.GetLogger(ctx).With(zap.String("job_id", job.ID))

	if err := s.jobs.UpdateStatus(ctx, job.ID, model.VideoJobStatusProcessing, repo.VideoJobResult{}, timeutil.NowUnix()); err != nil {
		logger.Error("mark video job processing failed", zap.Error(err))
		return
	}
	title, concept, err := s.ai.VideoConcept(ctx, job.Prompt, job.Style, job.Duration)
	if err != nil {
		logger.Warn("video concept generation failed", zap.Error(err))
		res := repo.VideoJobResult{Error: err.Error()}
		if err := s.jobs.UpdateStatus(ctx, job.ID, model.VideoJobStatusFailed, res, timeutil.NowUnix()); err != nil {
			logger.Error("mark video job failed failed", zap.Error(err))
		}
		return
	}
	res := repo.VideoJobResult{Title: title, Concept: concept}
	if err := s.jobs.UpdateStatus(ctx, job.ID, model.VideoJobStatusCompleted, res, timeutil.NowUnix()); err != nil {
		logger.Error("mark video job completed failed", zap.Error(err))
	}
}
