package domain

import "context"

// NotificationSink delivers a "your reserved seat is free" message to a
// user. The returned bool is the delivery confirmation; it is distinct
// from the error so that a clean-but-unconfirmed send can be told apart
// from a transport failure.
type NotificationSink interface {
	Notify(ctx context.Context, userID int, seat Coordinate, showtimeID int) (bool, error)
}
