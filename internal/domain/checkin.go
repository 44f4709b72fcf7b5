package domain

import (
	"time"

	anchor "github.com/dropanchor/anchor-go"
	"github.com/dropanchor/anchor-go/schemas"
)

// ResolvedCheckin is the read-side composite of a check-in and the address
// record it references. Recomputed per read, never persisted.
type ResolvedCheckin struct {
	Ref        anchor.StrongRef
	Checkin    schemas.Checkin
	Address    schemas.Address
	IsVerified bool
}

// CheckinEntry is one line of the local check-in journal: the two strong
// references a successful write produced, plus the verification state from
// the most recent integrity pass.
type CheckinEntry struct {
	ID         int64
	Checkin    anchor.StrongRef
	Address    anchor.StrongRef
	Text       string
	CreatedAt  time.Time
	Verified   *bool
	VerifiedAt *time.Time
}
