package model

import (
	"slices"
	"time"
)

type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	TVIDs         []string  `json:"tvIds"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ShownOn reports whether the event is assigned to the given TV.
func (e Event) ShownOn(tvID string) bool {
	return slices.Contains(e.TVIDs, tvID)
}

// EventPatch carries the fields of a partial update. Nil fields are left untouched.
type EventPatch struct {
	Name          *string
	Location      *string
	StartDateTime *time.Time
	EndDateTime   *time.Time
	TVIDs         *[]string
	Tags          *[]string
}
