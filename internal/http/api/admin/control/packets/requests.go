package packets

type CreateTVRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"` // generated from name when empty
	Orientation string `json:"orientation" binding:"omitempty,oneof=horizontal vertical"`
}

type UpdateTVRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Slug        *string `json:"slug" binding:"omitempty,min=1"`
	Orientation *string `json:"orientation" binding:"omitempty,oneof=horizontal vertical"`
}

// SetImageRequest carries an encoded image (data URL) or an image URL.
type SetImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// Date-times accept RFC3339 or wall-clock "2006-01-02T15:04[:05]" in the
// display timezone.
type CreateEventRequest struct {
	Name          string   `json:"name" binding:"required"`
	Location      string   `json:"location"`
	StartDateTime string   `json:"start_date_time" binding:"required"`
	EndDateTime   string   `json:"end_date_time" binding:"required"`
	TVIDs         []string `json:"tv_ids"`
	Tags          []string `json:"tags"`
}

type UpdateEventRequest struct {
	Name          *string   `json:"name" binding:"omitempty,min=1"`
	Location      *string   `json:"location"`
	StartDateTime *string   `json:"start_date_time"`
	EndDateTime   *string   `json:"end_date_time"`
	TVIDs         *[]string `json:"tv_ids"`
	Tags          *[]string `json:"tags"`
}
