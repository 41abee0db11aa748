package models

// UserRecord is the per-identity profile stored as a hash record.
type UserRecord struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	Points        int    `json:"points"`
	Streak        int    `json:"streak"`
	LastClaimDate string `json:"last_claim_date"` // ISO date of last daily claim
	CreatedAt     string `json:"created_at,omitempty"`
}

// UsernameCheck is the availability result for a candidate username.
type UsernameCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// DailyClaim is the outcome of a daily point claim.
type DailyClaim struct {
	Awarded int `json:"awarded"`
	Points  int `json:"points"`
	Streak  int `json:"streak"`
}
