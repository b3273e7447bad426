package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	handlers "github.com/oksasatya/midnight-circuit/internal/interface/http"
	"github.com/oksasatya/midnight-circuit/internal/interface/middleware"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

// ContentModule registers the same route set for every content kind under its
// plural segment (/api/posts, /api/sprints, ...), plus community topics and joins.
type ContentModule struct {
	Handler *handlers.ContentHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewContentModule(h *handlers.ContentHandler, jwt *helpers.JWTManager, rdb *redis.Client) *ContentModule {
	return &ContentModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *ContentModule) Register(rg *gin.RouterGroup) {
	authMW := middleware.Auth(m.Redis, m.JWT)
	userLimiter := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil)
	createLimiter := middleware.RateLimit(m.Redis, 20, time.Minute, middleware.KeyByUserID(), nil)

	for _, kind := range entity.Kinds() {
		base := "/" + kind.Segment()
		rg.GET(base, m.Handler.List(kind))
		rg.GET(base+"/:id", m.Handler.Get(kind))

		auth := rg.Group(base, authMW, userLimiter)
		auth.POST("", createLimiter, m.Handler.Create(kind))
		auth.POST("/:id/like", m.Handler.Like(kind))
		auth.POST("/:id/comments", m.Handler.Comment(kind))
		auth.DELETE("/:id", m.Handler.Delete(kind))
	}

	communities := "/" + entity.KindCommunity.Segment()
	rg.GET(communities+"/:id/topics", m.Handler.CommunityTopics)
	rg.POST(communities+"/:id/join", authMW, userLimiter, m.Handler.Join)
}
