package domain

import "time"

type Profile struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	DisplayName    *string   `json:"displayName"`
	Bio            *string   `json:"bio"`
	Location       *string   `json:"location"`
	Website        *string   `json:"website"`
	LinkedinURL    *string   `json:"linkedinUrl"`
	GithubURL      *string   `json:"githubUrl"`
	ProfilePicture *string   `json:"profilePicture"`
	IsVisible      bool      `json:"isVisible"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	// Joined fields
	Membership Membership `json:"membership"`
	Email      string     `json:"email,omitempty"`
	Hashtags   []Hashtag  `json:"hashtags"`
}

// ProfileCard is a discovery listing entry.
type ProfileCard struct {
	UserID          int64      `json:"userId"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	DisplayName     *string    `json:"displayName"`
	Bio             *string    `json:"bio"`
	Location        *string    `json:"location"`
	ProfilePicture  *string    `json:"profilePicture"`
	Membership      Membership `json:"membership"`
	ConnectionCount int        `json:"connectionCount"`
	Hashtags        []Hashtag  `json:"hashtags"`
	JoinedAt        time.Time  `json:"joinedAt"`
}
