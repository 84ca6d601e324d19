package packets

import "github.com/Nixie-Tech-LLC/lineup/internal/schedule"

// RESPONSES FOR /api/tv/:slug/*

type AgendaResponse struct {
	Slug string               `json:"slug"`
	Week []schedule.AgendaDay `json:"week"`
}

// StreamMessage is one websocket frame on /api/tv/:slug/stream.
type StreamMessage struct {
	Type    string           `json:"type"` // always "display"
	ETag    string           `json:"etag"`
	Display schedule.Display `json:"display"`
}

// PlayerPage is the data handed to the player page template.
type PlayerPage struct {
	Display   schedule.Display
	StreamURL string
}
