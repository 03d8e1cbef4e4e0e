package user

import (
	"github.com/google/uuid"
)

// User is the portfolio administrator. There is exactly one, defined by
// configuration.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
}

// adminNamespace scopes the deterministic admin ids.
var adminNamespace = uuid.MustParse("6f1c2d0e-8a57-4c1b-9f3e-2b7d5a9e4c10")

// IDFor derives the stable id of the admin with the given username, so tokens
// stay valid across restarts.
func IDFor(username string) uuid.UUID {
	return uuid.NewSHA1(adminNamespace, []byte(username))
}
