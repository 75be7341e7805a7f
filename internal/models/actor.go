package models

// Actor identifies the operator behind a request. It is handed explicitly to
// every component that mutates state instead of being read from a session.
type Actor struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (a Actor) String() string {
	if a.UserID == "" {
		return "system"
	}
	return a.Role + ":" + a.UserID
}
