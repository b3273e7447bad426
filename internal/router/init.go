package router

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/container"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/internal/infrastructure/elastic"
	pginfra "github.com/oksasatya/midnight-circuit/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/midnight-circuit/internal/interface/http"
	"github.com/oksasatya/midnight-circuit/internal/router/modules"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

// Deps is everything the feature modules are built from. Optional
// collaborators (Media, Search, Publisher, Locker) may be left nil.
type Deps struct {
	Users         repository.UserRepository
	Contents      repository.ContentRepository
	Notifications repository.NotificationRepository
	Messages      repository.MessageRepository

	Media     application.MediaStore
	Search    application.SearchIndex
	Publisher application.EventPublisher
	Locker    application.Locker
	Effects   *application.Effects

	Redis  *redis.Client
	JWT    *helpers.JWTManager
	Logger *logrus.Logger

	CookieDomain    string
	CookieSecure    bool
	FollowLockTTL   time.Duration
	RankingCacheTTL time.Duration
}

// Services are the application services built from Deps.
type Services struct {
	Accounts   *application.Service
	Ledger     *application.Ledger
	Notifier   *application.Notifier
	Graph      *application.Graph
	Engagement *application.Engagement
	Authoring  *application.Authoring
	Messages   *application.Messages
}

func BuildServices(d Deps) Services {
	ledger := application.NewLedger(d.Users, d.Logger)
	notifier := application.NewNotifier(d.Notifications, d.Publisher, d.Logger)
	return Services{
		Accounts:   application.NewService(d.Users, d.Contents, d.JWT, d.Media, d.Redis, d.Logger, d.Search, d.RankingCacheTTL),
		Ledger:     ledger,
		Notifier:   notifier,
		Graph:      application.NewGraph(d.Users, notifier, d.Effects, d.Locker, d.FollowLockTTL, d.Logger),
		Engagement: application.NewEngagement(d.Contents, notifier, d.Effects, d.Logger),
		Authoring:  application.NewAuthoring(d.Contents, d.Users, ledger, d.Media, d.Search, d.Effects, d.Logger),
		Messages:   application.NewMessages(d.Messages, d.Users),
	}
}

// Mount registers every feature module built from d.
func Mount(r *Registry, d Deps) Services {
	svc := BuildServices(d)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Accounts, d.Logger, d.CookieDomain, d.CookieSecure), d.JWT, d.Redis))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Accounts, svc.Graph, d.Logger), d.JWT, d.Redis))
	r.Add(modules.NewContentModule(handlers.NewContentHandler(svc.Authoring, svc.Engagement, svc.Accounts, d.Logger), d.JWT, d.Redis))
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(svc.Notifier, d.Logger), d.JWT, d.Redis))
	r.Add(modules.NewMessageModule(handlers.NewMessageHandler(svc.Messages, d.Logger), d.JWT, d.Redis))
	return svc
}

func depsFromContainer() Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	rdb := container.GetRedis()
	logger := container.GetLogger()

	d := Deps{
		Users:           pginfra.NewUserRepository(pool),
		Contents:        pginfra.NewContentRepository(pool),
		Notifications:   pginfra.NewNotificationRepository(pool),
		Messages:        pginfra.NewMessageRepository(pool),
		Effects:         container.GetEffects(),
		Redis:           rdb,
		JWT:             container.GetJWT(),
		Logger:          logger,
		CookieDomain:    cfg.CookieDomain,
		CookieSecure:    cfg.CookieSecure,
		FollowLockTTL:   cfg.FollowLockTTL,
		RankingCacheTTL: cfg.RankingCacheTTL,
	}
	// nil pointers must stay out of the interfaces
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Media = helpers.NewGCSMediaStore(gcs, cfg.GCSBucket)
	}
	if es := container.GetES(); es != nil {
		d.Search = elastic.NewIndex(es, cfg.ESUsersIndex, cfg.ESVehiclesIndex, logger)
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		d.Publisher = pub
	}
	if rdb != nil {
		d.Locker = helpers.NewRedisLocker(rdb)
	}
	return d
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	Mount(r, depsFromContainer())
	if cfg := container.GetConfig(); cfg == nil || cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
