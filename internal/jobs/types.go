// SPDX-License-Identifier: MIT

package jobs

import "time"

// Status describes the most recent refresh cycle. It is what the status
// endpoint serves, so field names are part of the API.
type Status struct {
	LastAttempt time.Time `json:"lastAttempt"`
	LastSuccess time.Time `json:"lastSuccess"`
	Generation  uint64    `json:"generation"`
	Cameras     int       `json:"cameras"`
	Playable    int       `json:"playable"`
	Regions     int       `json:"regions"`
	Source      string    `json:"source,omitempty"`
	Error       string    `json:"error,omitempty"`
	Restored    bool      `json:"restored,omitempty"`
}
