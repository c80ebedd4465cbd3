package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	feedBufferSize   = 64
	feedPingInterval = 30 * time.Second
	feedWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the engine middleware before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedHandler streams row-level deltas for one room over a websocket.
// The session is checked once at subscription; the feed itself is
// read-only. A slow consumer loses events and resynchronizes with a
// get-room snapshot.
func (s *Server) FeedHandler(ctx *gin.Context) {
	roomID := ctx.Param("id")
	playerID := ctx.Query("playerId")
	token := ctx.Query("sessionToken")

	if err := s.sessions.Validate(ctx.Request.Context(), roomID, playerID, token); err != nil {
		fail(ctx, "feed", err)
		return
	}
	if _, err := s.store.GetRoom(ctx.Request.Context(), roomID); err != nil {
		fail(ctx, "feed", err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("websocket upgrade failed")
		return
	}

	sub := s.broker.Subscribe(roomID, feedBufferSize)
	defer sub.Cancel()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(feedPingInterval * 2))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(feedPingInterval * 2))

	// Drain client frames so pongs and close frames are processed.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingInterval)
	defer ping.Stop()
	defer conn.Close()

	for {
		select {
		case evt, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-ctx.Request.Context().Done():
			return
		}
	}
}
