package room

// Room groups devices under a single owner. The JSON field names match
// the shapes the mobile clients already consume.
type Room struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user"`
	Name   string `json:"name"`
}
