package domain

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionBlocked:
		return true
	}
	return false
}

type Connection struct {
	ID          int64            `json:"id"`
	RequesterID int64            `json:"requesterId"`
	AddresseeID int64            `json:"addresseeId"`
	Status      ConnectionStatus `json:"status"`
	Message     *string          `json:"message,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ConnectionView is a connection seen from one of its parties.
type ConnectionView struct {
	ID            int64            `json:"id"`
	Status        ConnectionStatus `json:"status"`
	Message       *string          `json:"message"`
	CreatedAt     time.Time        `json:"createdAt"`
	IsRequester   bool             `json:"isRequester"`
	ConnectedUser ConnectedUser    `json:"connectedUser"`
}

type ConnectedUser struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	DisplayName    *string `json:"displayName"`
	ProfilePicture *string `json:"profilePicture"`
}
