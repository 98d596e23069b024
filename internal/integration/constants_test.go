package integration_test

const (
	// User fixture IDs from testdata/catalog_up.sql.
	TestUserAliceId = "1"
	TestUserBobId   = "2"
	TestUserCarolId = "3"

	// Showtime fixture: film 1 playing in a 3x4 room.
	TestShowtimeId = 1
	TestRoomRows   = 3
	TestRoomCols   = 4
)
