package model

import "time"

// ReloadReason says what asked for a reload.
type ReloadReason string

// Reload triggers.
const (
	ReloadStartup ReloadReason = "startup"
	ReloadWatch   ReloadReason = "watch"
	ReloadAPI     ReloadReason = "api"
)

// ReloadRequest asks for the data source to be read again. Requests carry no
// payload: every reload reads the whole file.
type ReloadRequest struct {
	ID          string       `json:"id"`
	Reason      ReloadReason `json:"reason"`
	RequestedAt time.Time    `json:"requested_at"`
}
