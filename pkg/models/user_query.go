package models

import "time"

// UserQuery records one free-text question and the model's answer.
// Rows are append-only; the engine never mutates or deletes them.
type UserQuery struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
