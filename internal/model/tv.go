package model

import "time"

type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// Valid reports whether o is one of the supported layouts.
func (o Orientation) Valid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

// TV represents a slug-addressed display endpoint.
type TV struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Orientation Orientation `json:"orientation"`
	ActiveImage string      `json:"activeImage,omitempty"` // data URL or uploaded file URL
	CreatedAt   time.Time   `json:"createdAt"`
}

// HasImage reports whether the override image is set.
func (t TV) HasImage() bool {
	return t.ActiveImage != ""
}

type TVPatch struct {
	Name        *string
	Slug        *string
	Orientation *Orientation
}
