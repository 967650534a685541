package model

import "time"

// Operator is a platform administrator allowed to confirm privileged actions
// such as credential promotion. PasswordHash is an argon2id PHC string.
type Operator struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
