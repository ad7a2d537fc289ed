package model

type SuggestedQuestion struct {
	ID            int64  `json:"id"`
	DocumentID    int64  `json:"document_id"`
	Question      string `json:"question"`
	QuestionOrder int    `json:"question_order"`
	Ctime         int64  `json:"ctime"`
}
