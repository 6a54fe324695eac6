package domain

import "time"

type Membership string

const (
	MembershipFree    Membership = "free"
	MembershipPremium Membership = "premium"
)

// MaxHashtags is the number of hashtags a profile may carry on this tier.
func (m Membership) MaxHashtags() int {
	if m == MembershipPremium {
		return 50
	}
	return 2
}

type User struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Membership    Membership `json:"membership"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Identity is the authenticated caller as seen by services.
type Identity struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Membership Membership `json:"membership"`
	IsActive   bool       `json:"isActive"`
}

type UserStats struct {
	TotalConnections int `json:"totalConnections"`
	PendingRequests  int `json:"pendingRequests"`
	TotalHashtags    int `json:"totalHashtags"`
}
