package share

import (
	"errors"
	"time"
)

var (
	ErrLinkNotFound   = errors.New("share link not found")
	ErrLinkExpired    = errors.New("share link expired")
	ErrWrongPassword  = errors.New("wrong share link password")
	ErrInvalidRequest = errors.New("invalid share link request")
	ErrInvalidViewer  = errors.New("invalid viewer token")
)

// Link gives read-only access to the statistics and workouts of its owner to
// anyone knowing the token and the password.
type Link struct {
	Token     string     `json:"token"`
	UserID    string     `json:"userId"`
	Label     string     `json:"label"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// StoredLink is a link together with its password hash, as kept in the db.
type StoredLink struct {
	Link
	PasswordHash string `json:"passwordHash"`
}
