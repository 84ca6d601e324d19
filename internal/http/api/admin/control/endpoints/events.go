package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/utils"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

type EventController struct {
	store db.Store
	loc   *time.Location
	now   func() time.Time
}

func newEventController(store db.Store, loc *time.Location) *EventController {
	return &EventController{store: store, loc: loc, now: time.Now}
}

// EventModule mounts all authenticated /events endpoints.
func EventModule(store db.Store, loc *time.Location) api.Module {
	ctl := newEventController(store, loc)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/events", ctl.listEvents)
		c.POST("/events", ctl.createEvent)
		c.GET("/events/active", ctl.activeEvents)
		c.GET("/events/upcoming", ctl.upcomingEvents)
		c.GET("/events/:id", ctl.getEvent)
		c.PUT("/events/:id", ctl.updateEvent)
		c.DELETE("/events/:id", ctl.deleteEvent)
	})
}

func (e *EventController) respond(events []model.Event) []packets.EventResponse {
	now := e.now()
	out := make([]packets.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, packets.NewEventResponse(ev, now))
	}
	return out
}

// checkTVs rejects assignments to TVs that do not exist.
func (e *EventController) checkTVs(ctx *gin.Context, ids []string) *api.APIError {
	for _, id := range ids {
		if _, err := e.store.GetTV(ctx.Request.Context(), id); err != nil {
			return &api.APIError{Code: http.StatusBadRequest, Message: fmt.Sprintf("unknown tv %q", id)}
		}
	}
	return nil
}

// GET /api/admin/events?tv_id=
func (e *EventController) listEvents(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	if tvID := ctx.Query("tv_id"); tvID != "" {
		return e.respond(e.store.EventsForTV(ctx.Request.Context(), tvID, e.now())), nil
	}
	return e.respond(e.store.ListEvents(ctx.Request.Context())), nil
}

// GET /api/admin/events/active
func (e *EventController) activeEvents(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	return e.respond(e.store.ActiveEvents(ctx.Request.Context(), e.now())), nil
}

// GET /api/admin/events/upcoming
func (e *EventController) upcomingEvents(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	return e.respond(e.store.UpcomingEvents(ctx.Request.Context(), e.now())), nil
}

// POST /api/admin/events
func (e *EventController) createEvent(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	var request packets.CreateEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	start, apiErr := utils.ParseDateTime("start_date_time", request.StartDateTime, e.loc)
	if apiErr != nil {
		return nil, apiErr
	}
	end, apiErr := utils.ParseDateTime("end_date_time", request.EndDateTime, e.loc)
	if apiErr != nil {
		return nil, apiErr
	}
	if apiErr := e.checkTVs(ctx, request.TVIDs); apiErr != nil {
		return nil, apiErr
	}

	event, err := e.store.AddEvent(ctx.Request.Context(), model.Event{
		Name:          request.Name,
		Location:      request.Location,
		StartDateTime: start,
		EndDateTime:   end,
		TVIDs:         request.TVIDs,
		Tags:          request.Tags,
	})
	if err != nil {
		return nil, utils.StoreError(err, "could not create event")
	}

	return packets.NewEventResponse(*event, e.now()), nil
}

// GET /api/admin/events/:id
func (e *EventController) getEvent(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	event, err := e.store.GetEvent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "event not found"}
	}
	return packets.NewEventResponse(*event, e.now()), nil
}

// PUT /api/admin/events/:id
func (e *EventController) updateEvent(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	var request packets.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	patch := model.EventPatch{
		Name:     request.Name,
		Location: request.Location,
		TVIDs:    request.TVIDs,
		Tags:     request.Tags,
	}
	if request.StartDateTime != nil {
		start, apiErr := utils.ParseDateTime("start_date_time", *request.StartDateTime, e.loc)
		if apiErr != nil {
			return nil, apiErr
		}
		patch.StartDateTime = &start
	}
	if request.EndDateTime != nil {
		end, apiErr := utils.ParseDateTime("end_date_time", *request.EndDateTime, e.loc)
		if apiErr != nil {
			return nil, apiErr
		}
		patch.EndDateTime = &end
	}
	if request.TVIDs != nil {
		if apiErr := e.checkTVs(ctx, *request.TVIDs); apiErr != nil {
			return nil, apiErr
		}
	}

	event, err := e.store.UpdateEvent(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		return nil, utils.StoreError(err, "could not update event")
	}
	if event == nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "event not found"}
	}

	log.Info().Str("event_id", event.ID).Str("username", user.Username).Msg("event updated")
	return packets.NewEventResponse(*event, e.now()), nil
}

// DELETE /api/admin/events/:id
func (e *EventController) deleteEvent(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	id := ctx.Param("id")
	if _, err := e.store.GetEvent(ctx.Request.Context(), id); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "event not found"}
	}

	if err := e.store.DeleteEvent(ctx.Request.Context(), id); err != nil {
		return nil, utils.StoreError(err, "could not delete event")
	}
	return gin.H{"deleted": id}, nil
}
