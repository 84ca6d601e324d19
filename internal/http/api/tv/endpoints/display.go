package endpoints

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/player"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

type TvController struct {
	resolver *player.Resolver
}

func NewTvController(resolver *player.Resolver) *TvController {
	return &TvController{resolver: resolver}
}

// DisplayModule mounts the public player endpoints under /api/tv.
func DisplayModule(resolver *player.Resolver) api.Module {
	ctl := NewTvController(resolver)
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/:slug/display", ctl.display)
		c.PUBLIC_GET("/:slug/agenda", ctl.agenda)
		c.Group.GET("/:slug/stream", ctl.stream)
	})
}

// ETag quotes the display fingerprint.
func ETag(d schedule.Display) string {
	return `"` + d.Fingerprint() + `"`
}

// etagMatches checks an If-None-Match header value, which may list several
// tags or be "*".
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// GET /api/tv/:slug/display
func (t *TvController) display(ctx *gin.Context) {
	d := t.resolver.Resolve(ctx.Request.Context(), ctx.Param("slug"))
	etag := ETag(d)

	ctx.Header("ETag", etag)
	ctx.Header("X-Content-ETag", etag)
	ctx.Header("Cache-Control", "no-cache")

	if d.Mode == schedule.ModeNotFound {
		ctx.JSON(http.StatusNotFound, d)
		return
	}

	inm := ctx.GetHeader("If-None-Match")
	if inm == "" {
		inm = ctx.GetHeader("X-If-None-Match")
	}
	if inm != "" && etagMatches(inm, etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, d)
}

// GET /api/tv/:slug/agenda
func (t *TvController) agenda(ctx *gin.Context) (any, *api.APIError) {
	slug := ctx.Param("slug")
	week, ok := t.resolver.Agenda(ctx.Request.Context(), slug)
	if !ok {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "tv not found"}
	}
	return packets.AgendaResponse{Slug: slug, Week: week}, nil
}
