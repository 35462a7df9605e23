package model

import "time"

// Candidate is a chairman / vice chairman pair on the ballot.
type Candidate struct {
	ID                string    `json:"id"`
	Number            int       `json:"candidate_number"`
	ChairmanName      string    `json:"chairman_name"`
	ViceChairmanName  string    `json:"vice_chairman_name"`
	ChairmanPhoto     string    `json:"chairman_photo"`
	ViceChairmanPhoto string    `json:"vice_chairman_photo"`
	Vision            string    `json:"vision"`
	Mission           string    `json:"mission"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PhotoSlot names one of the two photos of a candidate pair.
type PhotoSlot string

const (
	SlotChairman     PhotoSlot = "chairman"
	SlotViceChairman PhotoSlot = "vice_chairman"
)

func (s PhotoSlot) Valid() bool {
	return s == SlotChairman || s == SlotViceChairman
}
