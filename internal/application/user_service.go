package application

import (
	"context"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	repo "github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

const (
	defaultCoverURL = "https://images.unsplash.com/photo-1492144534655-ae79c964c9d7?q=80&w=1000"
	defaultBio      = "New driver"
	rankingKey      = "ranking:top"
	rankingSize     = 50
	searchSize      = 20
	sessionTTL      = 24 * time.Hour
)

var (
	ErrInvalidCredentials = apperror.New(apperror.ErrUnauthorized, "invalid credentials")
	ErrUserNotFound       = apperror.New(apperror.ErrNotFound, "user not found")
)

type Service struct {
	Repo       repo.UserRepository
	Contents   repo.ContentRepository
	JWT        *helpers.JWTManager
	Media      MediaStore
	Redis      *redis.Client
	Logger     *logrus.Logger
	Search     SearchIndex
	RankingTTL time.Duration
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewService(users repo.UserRepository, contents repo.ContentRepository, jwt *helpers.JWTManager, media MediaStore, rdb *redis.Client, logger *logrus.Logger, search SearchIndex, rankingTTL time.Duration) *Service {
	return &Service{
		Repo:       users,
		Contents:   contents,
		JWT:        jwt,
		Media:      media,
		Redis:      rdb,
		Logger:     logger,
		Search:     search,
		RankingTTL: rankingTTL,
	}
}

func defaultAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=ef4444&color=fff"
}

// Register creates an account with default profile fields and no experience.
func (s *Service) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "hash password")
	}
	u := &entity.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hash,
		Name:      strings.TrimSpace(name),
		AvatarURL: defaultAvatar(strings.TrimSpace(name)),
		CoverURL:  defaultCoverURL,
		Bio:       defaultBio,
		XP:        0,
		Level:     1,
		Following: []string{},
		Followers: []string{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.New(apperror.ErrConflict, "email already registered")
		}
		return nil, apperror.Wrap(apperror.ErrStorage, err, "create user")
	}
	s.indexUser(ctx, u)
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"avatar_url": u.AvatarURL,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*UserSummary, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	sum := summarizeUser(u)
	return &sum, pair, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, u)
}

// Logout drops the Redis session so outstanding access tokens stop working.
func (s *Service) Logout(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("redis session delete failed")
	}
}

func (s *Service) load(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "load user")
	}
	return u, nil
}

// Profile returns the full profile of email.
func (s *Service) Profile(ctx context.Context, email string) (*entity.User, error) {
	return s.load(ctx, email)
}

// Actor returns the current display snapshot of email.
func (s *Service) Actor(ctx context.Context, email string) (entity.Actor, error) {
	u, err := s.load(ctx, email)
	if err != nil {
		return entity.Actor{}, err
	}
	return u.Actor(), nil
}

type UpdateProfileInput struct {
	Name   string
	Bio    string
	Avatar *MediaUpload
	Cover  *MediaUpload
}

// UpdateProfile edits display fields. Past notifications keep their snapshot.
func (s *Service) UpdateProfile(ctx context.Context, email string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if in.Bio != "" {
		u.Bio = strings.TrimSpace(in.Bio)
	}
	if in.Avatar != nil && in.Avatar.Reader != nil {
		if u.AvatarURL, err = s.uploadProfileImage(ctx, u.ID, "avatars", in.Avatar); err != nil {
			return nil, err
		}
	}
	if in.Cover != nil && in.Cover.Reader != nil {
		if u.CoverURL, err = s.uploadProfileImage(ctx, u.ID, "covers", in.Cover); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "update profile")
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"name":       u.Name,
			"avatar_url": u.AvatarURL,
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	s.indexUser(ctx, u)
	return u, nil
}

func (s *Service) uploadProfileImage(ctx context.Context, userID, folder string, m *MediaUpload) (string, error) {
	if s.Media == nil {
		return "", apperror.New(apperror.ErrStorage, "media storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(m.Filename))
	objectPath := path.Join(folder, userID, uuid.NewString()+ext)
	u, err := s.Media.Upload(ctx, objectPath, m.ContentType, m.Reader)
	if err != nil {
		return "", apperror.Wrap(apperror.ErrStorage, err, "upload %s", folder)
	}
	return u, nil
}

// Directory lists every user's public fields.
func (s *Service) Directory(ctx context.Context) ([]UserSummary, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "list users")
	}
	return summarize(users), nil
}

// Ranking returns the top users by experience, cached briefly in Redis.
func (s *Service) Ranking(ctx context.Context) ([]UserSummary, error) {
	if s.Redis != nil && s.RankingTTL > 0 {
		var cached []UserSummary
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, rankingKey, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("ranking cache read failed")
		}
	}
	users, err := s.Repo.TopByXP(ctx, rankingSize)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "load ranking")
	}
	out := summarize(users)
	if s.Redis != nil && s.RankingTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, rankingKey, out, s.RankingTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("ranking cache write failed")
		}
	}
	return out, nil
}

// SearchAll matches users by name and vehicles by model or nickname.
func (s *Service) SearchAll(ctx context.Context, q string) (SearchResult, error) {
	q = strings.TrimSpace(q)
	res := SearchResult{Users: []UserSummary{}, Vehicles: []VehicleSummary{}}
	if q == "" {
		return res, nil
	}
	if s.Search != nil {
		users, err := s.Search.SearchUsers(ctx, q, searchSize)
		if err != nil {
			return res, apperror.Wrap(apperror.ErrStorage, err, "search users")
		}
		vehicles, err := s.Search.SearchVehicles(ctx, q, searchSize)
		if err != nil {
			return res, apperror.Wrap(apperror.ErrStorage, err, "search vehicles")
		}
		res.Users, res.Vehicles = users, vehicles
		return res, nil
	}

	users, err := s.Repo.SearchByName(ctx, q, searchSize)
	if err != nil {
		return res, apperror.Wrap(apperror.ErrStorage, err, "search users")
	}
	res.Users = summarize(users)
	if s.Contents != nil {
		vehicles, err := s.Contents.SearchVehicles(ctx, q, searchSize)
		if err != nil {
			return res, apperror.Wrap(apperror.ErrStorage, err, "search vehicles")
		}
		for i := range vehicles {
			res.Vehicles = append(res.Vehicles, SummarizeVehicle(&vehicles[i]))
		}
	}
	return res, nil
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexUser(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index failed")
	}
}

func summarize(users []entity.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, summarizeUser(&users[i]))
	}
	return out
}
