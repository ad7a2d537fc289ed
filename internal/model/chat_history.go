package model

type ChatHistory struct {
	ID                int64  `json:"id"`
	SessionID         int64  `json:"session_id"`
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	SuggestedQuestion bool   `json:"suggested_question"`
	Ctime             int64  `json:"ctime"`
}
