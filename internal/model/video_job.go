package model

const (
	VideoJobStatusQueued     = "queued"
	VideoJobStatusProcessing = "processing"
	VideoJobStatusCompleted  = "completed"
	VideoJobStatusFailed     = "failed"
)

const (
	VideoStyleMobile  = "mobile"
	VideoStyleDesktop = "desktop"
)

type VideoJob struct {
	ID           string `json:"job_id"`
	UserID       string `json:"user_id"`
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	Duration     int    `json:"duration"`
	IncludeAudio bool   `json:"include_audio"`
	Status       string `json:"status"`
	Title        string `json:"title,omitempty"`
	Concept      string `json:"concept,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	Error        string `json:"error,omitempty"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
