package service

import "errors"

var (
	// Validation
	ErrInvalidAction   = errors.New("action must be accept or decline")
	ErrInvalidStatus   = errors.New("invalid connection status")
	ErrHashtagLimit    = errors.New("hashtag limit exceeded for membership")
	ErrInvalidHashtags = errors.New("one or more hashtags are invalid")
	ErrSearchTooShort  = errors.New("search query must be at least 2 characters")

	// NotFound
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrConnectionNotFound = errors.New("connection request not found")

	// Conflict
	ErrSelfConnection    = errors.New("cannot connect to yourself")
	ErrEmailTaken        = errors.New("email already taken")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrConnectionBlocked = errors.New("connection blocked")
	ErrRequestExists     = errors.New("connection request already exists")
	ErrAlreadyProcessed  = errors.New("connection request already processed")

	// Forbidden
	ErrProfilePrivate = errors.New("profile is private")

	// Unauthorized
	ErrInvalidCreds       = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Kind int

const (
	KindTransient Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "transient"
}

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindValidation, []error{ErrInvalidAction, ErrInvalidStatus, ErrHashtagLimit, ErrInvalidHashtags, ErrSearchTooShort}},
	{KindNotFound, []error{ErrUserNotFound, ErrProfileNotFound, ErrConnectionNotFound}},
	{KindConflict, []error{ErrSelfConnection, ErrEmailTaken, ErrAlreadyConnected, ErrConnectionBlocked, ErrRequestExists, ErrAlreadyProcessed}},
	{KindForbidden, []error{ErrProfilePrivate}},
	{KindUnauthorized, []error{ErrInvalidCreds, ErrAccountDeactivated, ErrInvalidToken}},
}

// KindOf classifies err. Anything not wrapping a known sentinel is transient.
func KindOf(err error) Kind {
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindTransient
}
