package models

import "time"

type VoiceOfCustomer struct {
	ID        uint      `json:"id"`
	Author    uint      `json:"author"`
	Survey    uint      `json:"survey"`
	Context   string    `json:"context"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
}
