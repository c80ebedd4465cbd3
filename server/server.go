// Package server is the HTTP boundary: one action endpoint for every
// room mutation and query, a websocket feed of row-level deltas per
// room, a QR code for the join link, and health.
package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/NikhilRaikwar/DrawParty/directory"
	"github.com/NikhilRaikwar/DrawParty/game"
	"github.com/NikhilRaikwar/DrawParty/realtime"
	"github.com/NikhilRaikwar/DrawParty/storage"
)

type SessionValidator interface {
	Validate(ctx context.Context, roomID, playerID, token string) error
}

type Server struct {
	games      *game.Service
	rooms      *directory.Directory
	sessions   SessionValidator
	store      storage.Store
	broker     *realtime.Broker
	iceServers []string
	baseURL    string
}

func New(games *game.Service, rooms *directory.Directory, sessions SessionValidator, store storage.Store, broker *realtime.Broker, iceServers []string, baseURL string) *Server {
	return &Server{
		games:      games,
		rooms:      rooms,
		sessions:   sessions,
		store:      store,
		broker:     broker,
		iceServers: iceServers,
		baseURL:    baseURL,
	}
}

func CreateEngine(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func (s *Server) Register(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/action", s.ActionHandler)
	v1.GET("/rooms/:id/feed", s.FeedHandler)
	v1.GET("/qr/:code", s.QRHandler)
}
