package model

type ChatSession struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	DocumentID  int64  `json:"document_id"`
	SessionName string `json:"session_name"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}
