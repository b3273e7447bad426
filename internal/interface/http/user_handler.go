package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/pkg/response"
	"github.com/oksasatya/midnight-circuit/pkg/validation"
)

type UserHandler struct {
	Svc    *application.Service
	Graph  *application.Graph
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, graph *application.Graph, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Graph: graph, Logger: logger}
}

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CoverURL  string    `json:"cover_url"`
	Bio       string    `json:"bio"`
	XP        int64     `json:"xp"`
	Level     int64     `json:"level"`
	Following []string  `json:"following"`
	Followers []string  `json:"followers"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfile(u *entity.User) profileResponse {
	p := profileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		Bio:       u.Bio,
		XP:        u.XP,
		Level:     u.Level,
		Following: u.Following,
		Followers: u.Followers,
		CreatedAt: u.CreatedAt,
	}
	if p.Following == nil {
		p.Following = []string{}
	}
	if p.Followers == nil {
		p.Followers = []string{}
	}
	return p
}

type updateProfileRequest struct {
	Name string `form:"name" binding:"omitempty,displayname"`
	Bio  string `form:"bio" binding:"max=500"`
}

func (h *UserHandler) Directory(c *gin.Context) {
	users, err := h.Svc.Directory(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "ok", map[string]any{"count": len(users)})
}

func (h *UserHandler) Ranking(c *gin.Context) {
	users, err := h.Svc.Ranking(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "ok", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	res, err := h.Svc.SearchAll(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "ok", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		email = currentEmail(c)
	}
	u, err := h.Svc.Profile(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfile(u), "ok", nil)
}

// UpdateProfile accepts multipart form fields name and bio plus optional
// avatar and cover files.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateProfileInput{Name: req.Name, Bio: req.Bio}
	var err error
	var closers []multipart.File
	defer func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}()
	if in.Avatar, err = formUpload(c, "avatar", &closers); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid avatar upload", err.Error())
		return
	}
	if in.Cover, err = formUpload(c, "cover", &closers); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid cover upload", err.Error())
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentEmail(c), in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfile(u), "profile updated", nil)
}

func (h *UserHandler) ToggleFollow(c *gin.Context) {
	state, err := h.Graph.ToggleFollow(c.Request.Context(), currentEmail(c), c.Param("email"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	msg := "unfollowed"
	if state.Following {
		msg = "followed"
	}
	response.Success(c, http.StatusOK, state, msg, nil)
}

// formUpload opens the optional multipart file field. Opened files are
// appended to closers.
func formUpload(c *gin.Context, field string, closers *[]multipart.File) (*application.MediaUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, f)
	return &application.MediaUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	}, nil
}
