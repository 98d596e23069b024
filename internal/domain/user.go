package domain

import "context"

// User carries the minimum the booking core needs about an account:
// where to send release notifications. Account management lives elsewhere.
type User struct {
	ID    int
	Name  string
	Email string
}

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*User, error)
}
