package model

import "time"

// Setting is a singleton row (fixed primary key, updates replace).
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100" json:"username"`
	System    string    `gorm:"size:1000" json:"system"`
	UpdatedAt time.Time `json:"updated_at"`
}
