package endpoints

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
	"github.com/Nixie-Tech-LLC/lineup/internal/slug"
)

// previewSize caps the TV and upcoming lists shown on the dashboard.
const previewSize = 5

type DashboardController struct {
	store db.Store
	now   func() time.Time
}

// DashboardModule mounts the overview and slug helper endpoints.
func DashboardModule(store db.Store) api.Module {
	ctl := &DashboardController{store: store, now: time.Now}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/dashboard", ctl.overview)
		c.GET("/slug", ctl.generateSlug)
	})
}

// GET /api/admin/dashboard
func (d *DashboardController) overview(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	now := d.now()
	tvs := d.store.ListTVs(ctx.Request.Context())
	events := d.store.ListEvents(ctx.Request.Context())
	active := d.store.ActiveEvents(ctx.Request.Context(), now)
	upcoming := d.store.UpcomingEvents(ctx.Request.Context(), now)

	out := packets.DashboardResponse{
		TVCount:       len(tvs),
		EventCount:    len(events),
		ActiveCount:   len(active),
		UpcomingCount: len(upcoming),
		TVs:           []packets.TVResponse{},
		Upcoming:      []packets.EventResponse{},
	}
	for _, tv := range tvs[:min(previewSize, len(tvs))] {
		out.TVs = append(out.TVs, packets.NewTVResponse(tv))
	}
	for _, e := range upcoming[:min(previewSize, len(upcoming))] {
		out.Upcoming = append(out.Upcoming, packets.NewEventResponse(e, now))
	}
	return out, nil
}

// GET /api/admin/slug?name=
func (d *DashboardController) generateSlug(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	name := ctx.Query("name")
	return packets.SlugResponse{Name: name, Slug: slug.Generate(name)}, nil
}
