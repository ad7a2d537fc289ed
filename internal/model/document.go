package model

// Document types recorded on save. The type is a free-form tag; these are
// the values the clients send.
const (
	DocumentTypeText   = "text"
	DocumentTypePDF    = "pdf"
	DocumentTypeDoc    = "doc"
	DocumentTypeManual = "manual_text"
)

type Document struct {
	ID            int64  `json:"id"`
	UserID        string `json:"user_id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Summary       string `json:"summary,omitempty"`
	ContentLength int    `json:"content_length"`
	DocumentType  string `json:"document_type"`
	FileName      string `json:"file_name,omitempty"`
	Ctime         int64  `json:"ctime"`
	Mtime         int64  `json:"mtime"`
}
