package utils

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
)

// wall-clock layouts accepted when no offset is given, as sent by
// datetime-local inputs
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime reads an RFC3339 instant, or a wall-clock time interpreted
// in loc.
func ParseDateTime(field, raw string, loc *time.Location) (time.Time, *api.APIError) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &api.APIError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("%s must be RFC3339 or YYYY-MM-DDTHH:MM", field),
	}
}

// StoreError maps repository errors onto API errors.
func StoreError(err error, action string) *api.APIError {
	for _, invalid := range []error{db.ErrInvalidWindow, db.ErrInvalidSlug, db.ErrInvalidOrientation} {
		if errors.Is(err, invalid) {
			return &api.APIError{Code: http.StatusBadRequest, Message: invalid.Error()}
		}
	}
	switch {
	case errors.Is(err, db.ErrSlugTaken):
		return &api.APIError{Code: http.StatusConflict, Message: db.ErrSlugTaken.Error()}
	case errors.Is(err, db.ErrNotFound):
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	default:
		log.Error().Err(err).Msg(action)
		return &api.APIError{Code: http.StatusInternalServerError, Message: action}
	}
}
