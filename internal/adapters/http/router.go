package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ClientTokenMiddleware gives every browser a stable correlation id. It is
// not identity; identity comes from the authenticate handshake on the socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MeetSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	// Read-only registry views; live state only, storage CRUD lives elsewhere.
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": coord.Registry.List()})
	})
	api.GET("/rooms/:id", func(c *gin.Context) {
		room, ok := coord.Registry.Find(domain.RoomID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"roomId":      room.ID,
			"memberCount": room.MemberCount(),
			"capacity":    room.Capacity,
			"members":     room.Snapshot(),
		})
	})

	ctl := signal.NewController(coord, cfg.SendBuffer, cfg.ReadLimit)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.Handle(ctx, c)
	})

	return r
}
