package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/player"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

// PlayerTemplate is the name the player page template is registered under.
const PlayerTemplate = "tv.html"

// PlayerPageModule mounts the server-rendered player at /tv/:slug.
func PlayerPageModule(resolver *player.Resolver) api.Module {
	ctl := NewTvController(resolver)
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/:slug", ctl.page)
	})
}

// GET /tv/:slug
func (t *TvController) page(ctx *gin.Context) {
	slug := ctx.Param("slug")
	d := t.resolver.Resolve(ctx.Request.Context(), slug)

	status := http.StatusOK
	if d.Mode == schedule.ModeNotFound {
		status = http.StatusNotFound
	}
	ctx.HTML(status, PlayerTemplate, packets.PlayerPage{
		Display:   d,
		StreamURL: "/api/tv/" + slug + "/stream",
	})
}
