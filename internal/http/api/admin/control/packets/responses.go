package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/lineup/internal/model"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

type TVResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Orientation string `json:"orientation"`
	ActiveImage string `json:"active_image,omitempty"`
	HasImage    bool   `json:"has_image"`
	PlayerURL   string `json:"player_url"`
	CreatedAt   string `json:"created_at"`
}

func NewTVResponse(tv model.TV) TVResponse {
	return TVResponse{
		ID:          tv.ID,
		Name:        tv.Name,
		Slug:        tv.Slug,
		Orientation: string(tv.Orientation),
		ActiveImage: tv.ActiveImage,
		HasImage:    tv.HasImage(),
		PlayerURL:   "/tv/" + tv.Slug,
		CreatedAt:   tv.CreatedAt.Format(time.RFC3339),
	}
}

type EventResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	StartDateTime string   `json:"start_date_time"`
	EndDateTime   string   `json:"end_date_time"`
	TVIDs         []string `json:"tv_ids"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status"` // active, upcoming or past
	CreatedAt     string   `json:"created_at"`
}

func NewEventResponse(e model.Event, now time.Time) EventResponse {
	status := "past"
	switch {
	case schedule.IsActive(e, now):
		status = "active"
	case schedule.IsUpcoming(e, now):
		status = "upcoming"
	}

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EventResponse{
		ID:            e.ID,
		Name:          e.Name,
		Location:      e.Location,
		StartDateTime: e.StartDateTime.Format(time.RFC3339),
		EndDateTime:   e.EndDateTime.Format(time.RFC3339),
		TVIDs:         e.TVIDs,
		Tags:          tags,
		Status:        status,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SlugAvailabilityResponse struct {
	Slug      string `json:"slug"`
	Valid     bool   `json:"valid"`
	Available bool   `json:"available"`
}

type DashboardResponse struct {
	TVCount       int             `json:"tv_count"`
	EventCount    int             `json:"event_count"`
	ActiveCount   int             `json:"active_count"`
	UpcomingCount int             `json:"upcoming_count"`
	TVs           []TVResponse    `json:"tvs"`
	Upcoming      []EventResponse `json:"upcoming"`
}
