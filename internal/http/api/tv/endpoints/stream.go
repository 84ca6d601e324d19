package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/tv/:slug/stream
// Pushes the display on connect and whenever it changes. The socket closes
// from either side; the server never expects client messages.
func (t *TvController) stream(c *gin.Context) {
	slug := c.Param("slug")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// reader: only there to notice the peer going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info().Str("slug", slug).Msg("player stream connected")
	err = t.resolver.Watch(ctx, slug, func(d schedule.Display) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(packets.StreamMessage{Type: "display", ETag: ETag(d), Display: d})
	})
	if err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("player stream write failed")
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	log.Info().Str("slug", slug).Msg("player stream disconnected")
}
