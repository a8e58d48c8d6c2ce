package models

import "time"

// Class is one level of the academic ladder. Rank gives the total order used
// by the promotion workflow; the class with the highest rank is terminal and
// its successful students graduate instead of promoting.
type Class struct {
	ID          string    `db:"id" json:"id"`
	Level       string    `db:"level" json:"level"`
	Description string    `db:"description" json:"description,omitempty"`
	Rank        int       `db:"rank" json:"rank"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFee is the monthly tuition amount charged for a class; one row per
// class.
type ClassFee struct {
	ID      string  `db:"id" json:"id"`
	ClassID string  `db:"class_id" json:"class_id"`
	Amount  float64 `db:"amount" json:"amount"`
}

// ClassFeeDetail joins the fee amount with its class level for admin listings.
type ClassFeeDetail struct {
	ClassFee
	ClassLevel string `db:"class_level" json:"class_level"`
}
