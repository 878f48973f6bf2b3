package models

import "time"

type RefreshToken struct {
	ID        string
	Address   string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
