package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/midnight-circuit/config"
	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	pginfra "github.com/oksasatya/midnight-circuit/internal/infrastructure/postgres"
	"github.com/oksasatya/midnight-circuit/internal/router"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

type demoUser struct {
	Email, Name string
}

var demoUsers = []demoUser{
	{Email: "nina@midnight.test", Name: "Nina Drift"},
	{Email: "kai@midnight.test", Name: "Kai Turbo"},
	{Email: "leo@midnight.test", Name: "Leo Apex"},
}

const demoPassword = "password123"

// seed goes through the application services so rewards, follow symmetry and
// notifications are produced exactly as they are at runtime.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns, MaxConnLifetime: cfg.DBMaxConnLife})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	svc := router.BuildServices(router.Deps{
		Users:         pginfra.NewUserRepository(pool),
		Contents:      pginfra.NewContentRepository(pool),
		Notifications: pginfra.NewNotificationRepository(pool),
		Messages:      pginfra.NewMessageRepository(pool),
		Effects:       application.NewEffects(logger, false, cfg.SideEffectTimeout),
		JWT:           helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Logger:        logger,
	})

	actors := make([]entity.Actor, 0, len(demoUsers))
	for _, du := range demoUsers {
		u, err := svc.Accounts.Register(ctx, du.Email, demoPassword, du.Name)
		switch {
		case errors.Is(err, apperror.ErrConflict):
			fmt.Printf("user exists: %s\n", du.Email)
		case err != nil:
			log.Fatalf("failed to seed user %s: %v", du.Email, err)
		default:
			fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, u.Email, demoPassword)
		}
		a, err := svc.Accounts.Actor(ctx, du.Email)
		if err != nil {
			log.Fatalf("failed to load %s: %v", du.Email, err)
		}
		actors = append(actors, a)
	}

	nina, kai, leo := actors[0], actors[1], actors[2]
	for _, pair := range [][2]entity.Actor{{kai, nina}, {leo, nina}, {nina, kai}} {
		if st, err := svc.Graph.ToggleFollow(ctx, pair[0].Email, pair[1].Email); err != nil {
			log.Printf("follow %s -> %s: %v", pair[0].Email, pair[1].Email, err)
		} else if !st.Following {
			// already followed on a previous run; restore it
			_, _ = svc.Graph.ToggleFollow(ctx, pair[0].Email, pair[1].Email)
		}
	}

	community, err := svc.Authoring.CreateContent(ctx, entity.KindCommunity, nina, application.ContentInput{
		Title: "Midnight JDM", Body: "Late night meets and touge runs",
	}, nil)
	if err != nil {
		log.Fatalf("failed to seed community: %v", err)
	}
	if err := svc.Engagement.JoinCommunity(ctx, community.ID, kai.Email); err != nil {
		log.Fatalf("failed to join community: %v", err)
	}
	if _, err := svc.Authoring.CreateContent(ctx, entity.KindTopic, kai, application.ContentInput{
		Title: "Friday meet spot?", Body: "Harbor lot or the old mall?", CommunityID: community.ID,
	}, nil); err != nil {
		log.Fatalf("failed to seed topic: %v", err)
	}

	vehicle, err := svc.Authoring.CreateContent(ctx, entity.KindVehicle, leo, application.ContentInput{
		Brand: "Nissan", Model: "Skyline GT-R R34", Nickname: "Godzilla", OwnerName: nina.Name,
		Specs: map[string]string{"hp": "600", "drivetrain": "AWD", "year": "1999"},
		Mods:  []string{"HKS turbo", "Nismo exhaust"},
	}, nil)
	if err != nil {
		log.Fatalf("failed to seed vehicle: %v", err)
	}

	post, err := svc.Authoring.CreateContent(ctx, entity.KindPost, kai, application.ContentInput{Body: "First night out with the crew."}, nil)
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	if _, err := svc.Engagement.Like(ctx, entity.KindPost, post.ID, nina); err != nil {
		log.Fatalf("failed to like post: %v", err)
	}
	if _, err := svc.Engagement.Comment(ctx, entity.KindVehicle, vehicle.ID, kai, "That R34 is unreal."); err != nil {
		log.Fatalf("failed to comment: %v", err)
	}

	fmt.Printf("seeded community=%s vehicle=%s post=%s\n", community.ID, vehicle.ID, post.ID)
}
