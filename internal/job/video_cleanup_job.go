package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/readvox/readvox/internal/service"
)

type VideoCleanupJob struct {
	videos *service.VideoService
}

func NewVideoCleanupJob(videos *service.VideoService) *VideoCleanupJob {
	return &VideoCleanupJob{videos: videos}
}

func (j *VideoCleanupJob) Name() string {
	return "video_job_cleanup"
}

func (j *VideoCleanupJob) Run(ctx context.Context) error {
	if j.videos == nil {
		return nil
	}
	removed, err := j.videos.Purge(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("purged expired video jobs", zap.Int64("count", removed))
	}
	return nil
}
