package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/midnight-circuit/internal/interface/http"
	"github.com/oksasatya/midnight-circuit/internal/interface/middleware"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

type MessageModule struct {
	Handler *handlers.MessageHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewMessageModule(h *handlers.MessageHandler, jwt *helpers.JWTManager, rdb *redis.Client) *MessageModule {
	return &MessageModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *MessageModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/messages", middleware.Auth(m.Redis, m.JWT))
	auth.GET("/:email", m.Handler.Conversation)
	auth.POST("/:email", middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Send)
}
