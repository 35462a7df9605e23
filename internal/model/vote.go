package model

import "time"

// Vote is a cast ballot. The database keeps at most one per voter.
type Vote struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"voter_id"`
	CandidateID string    `json:"candidate_id"`
	VotedAt     time.Time `json:"voted_at"`
}

// VoterEntry is one row of the admin voters list.
type VoterEntry struct {
	VoteID           string    `json:"id"`
	FullName         string    `json:"full_name"`
	Class            string    `json:"class"`
	VotedAt          time.Time `json:"voted_at"`
	CandidateNumber  int       `json:"candidate_number"`
	ChairmanName     string    `json:"chairman_name"`
	ViceChairmanName string    `json:"vice_chairman_name"`
}

// CandidateTally is the vote count of a single candidate.
type CandidateTally struct {
	CandidateID      string  `json:"id"`
	CandidateNumber  int     `json:"candidate_number"`
	ChairmanName     string  `json:"chairman_name"`
	ViceChairmanName string  `json:"vice_chairman_name"`
	Votes            int     `json:"votes"`
	Percentage       float64 `json:"percentage"`
}

// VotingStats summarizes turnout and per-candidate results.
type VotingStats struct {
	TotalVoters       int              `json:"total_voters"`
	TotalVotes        int              `json:"total_votes"`
	ParticipationRate float64          `json:"participation_rate"`
	Candidates        []CandidateTally `json:"candidates"`
	GeneratedAt       time.Time        `json:"generated_at"`
}
