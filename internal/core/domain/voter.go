package domain

import "time"

// Voter is identified only by its voucher; no personal data is stored.
type Voter struct {
	ID        int64     `json:"id"`
	Voucher   string    `json:"voucher"`
	CreatedAt time.Time `json:"created_at"`
}
