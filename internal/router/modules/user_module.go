package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/midnight-circuit/internal/interface/http"
	"github.com/oksasatya/midnight-circuit/internal/interface/middleware"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

// UserModule wires directory, ranking, search, profile and follow routes.
// Public: GET /api/users, /api/ranking, /api/search, /api/profile/:email
// Protected: GET /api/profile, PUT /api/profile, POST /api/follow/:email
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	searchLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/users", m.Handler.Directory)
	rg.GET("/ranking", m.Handler.Ranking)
	rg.GET("/search", searchLimiter, m.Handler.Search)
	rg.GET("/profile/:email", m.Handler.GetProfile)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/follow/:email", m.Handler.ToggleFollow)
	}
}
