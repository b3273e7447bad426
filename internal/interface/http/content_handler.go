package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/response"
	"github.com/oksasatya/midnight-circuit/pkg/validation"
)

// ContentHandler serves every content kind. Handlers are built per kind by the
// router so each kind gets its own static route prefix.
type ContentHandler struct {
	Authoring  *application.Authoring
	Engagement *application.Engagement
	Accounts   *application.Service
	Logger     *logrus.Logger
}

func NewContentHandler(authoring *application.Authoring, engagement *application.Engagement, accounts *application.Service, logger *logrus.Logger) *ContentHandler {
	return &ContentHandler{Authoring: authoring, Engagement: engagement, Accounts: accounts, Logger: logger}
}

type contentResponse struct {
	ID           string                 `json:"id"`
	Kind         entity.Kind            `json:"kind"`
	OwnerEmail   string                 `json:"owner_email"`
	AuthorEmail  string                 `json:"author_email"`
	AuthorName   string                 `json:"author_name"`
	AuthorAvatar string                 `json:"author_avatar"`
	Title        string                 `json:"title,omitempty"`
	Body         string                 `json:"body,omitempty"`
	MediaURL     string                 `json:"media_url,omitempty"`
	MediaType    entity.MediaType       `json:"media_type,omitempty"`
	CommunityID  string                 `json:"community_id,omitempty"`
	Vehicle      *entity.VehicleDetails `json:"vehicle,omitempty"`
	Members      []string               `json:"members,omitempty"`
	Admins       []string               `json:"admins,omitempty"`
	Likes        int64                  `json:"likes"`
	Comments     []entity.Comment       `json:"comments"`
	CreatedAt    time.Time              `json:"created_at"`
}

func toContent(c *entity.Content) contentResponse {
	out := contentResponse{
		ID:           c.ID,
		Kind:         c.Kind,
		OwnerEmail:   c.OwnerEmail,
		AuthorEmail:  c.AuthorEmail,
		AuthorName:   c.AuthorName,
		AuthorAvatar: c.AuthorAvatar,
		Title:        c.Title,
		Body:         c.Body,
		MediaURL:     c.MediaURL,
		MediaType:    c.MediaType,
		CommunityID:  c.CommunityID,
		Vehicle:      c.Vehicle,
		Members:      c.Members,
		Admins:       c.Admins,
		Likes:        c.LikeCount,
		Comments:     c.Comments,
		CreatedAt:    c.CreatedAt,
	}
	if out.Comments == nil {
		out.Comments = []entity.Comment{}
	}
	return out
}

func toContents(items []entity.Content) []contentResponse {
	out := make([]contentResponse, 0, len(items))
	for i := range items {
		out = append(out, toContent(&items[i]))
	}
	return out
}

// createContentRequest binds both multipart forms and JSON bodies. Communities
// may send name/description instead of title/body, sprints description.
type createContentRequest struct {
	Title       string            `form:"title" json:"title"`
	Name        string            `form:"name" json:"name"`
	Body        string            `form:"body" json:"body"`
	Description string            `form:"description" json:"description"`
	CommunityID string            `form:"community_id" json:"community_id"`
	Brand       string            `form:"brand" json:"brand"`
	Model       string            `form:"model" json:"model"`
	Nickname    string            `form:"nickname" json:"nickname"`
	OwnerName   string            `form:"owner_name" json:"owner_name"`
	Specs       map[string]string `form:"-" json:"specs"`
	Mods        []string          `form:"mods" json:"mods"`
}

func (r createContentRequest) input() application.ContentInput {
	return application.ContentInput{
		Title:       firstNonEmpty(r.Title, r.Name),
		Body:        firstNonEmpty(r.Body, r.Description),
		CommunityID: r.CommunityID,
		Brand:       r.Brand,
		Model:       r.Model,
		Nickname:    r.Nickname,
		OwnerName:   r.OwnerName,
		Specs:       r.Specs,
		Mods:        splitMods(r.Mods),
	}
}

type commentRequest struct {
	Text string `json:"text" form:"text"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// splitMods accepts both repeated fields and one comma separated value.
func splitMods(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// actor resolves the caller's current display snapshot.
func (h *ContentHandler) actor(c *gin.Context) (entity.Actor, error) {
	return h.Accounts.Actor(c.Request.Context(), currentEmail(c))
}

func (h *ContentHandler) List(kind entity.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.Engagement.List(c.Request.Context(), repository.ContentFilter{Kind: kind})
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, toContents(items), "ok", map[string]any{"count": len(items)})
	}
}

func (h *ContentHandler) Get(kind entity.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := h.Engagement.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, toContent(item), "ok", nil)
	}
}

func (h *ContentHandler) Create(kind entity.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createContentRequest
		if err := c.ShouldBind(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			req.Specs = c.PostFormMap("specs")
		}

		var closers []multipart.File
		defer func() {
			for _, f := range closers {
				_ = f.Close()
			}
		}()
		media, err := formUpload(c, "media", &closers)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid media upload", err.Error())
			return
		}

		author, err := h.actor(c)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		created, err := h.Authoring.CreateContent(c.Request.Context(), kind, author, req.input(), media)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusCreated, toContent(created), string(kind)+" created", nil)
	}
}

func (h *ContentHandler) Like(kind entity.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := h.actor(c)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		n, err := h.Engagement.Like(c.Request.Context(), kind, c.Param("id"), actor)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"likes": n}, "liked", nil)
	}
}

func (h *ContentHandler) Comment(kind entity.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req commentRequest
		if err := c.ShouldBind(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
		actor, err := h.actor(c)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		comments, err := h.Engagement.Comment(c.Request.Context(), kind, c.Param("id"), actor, req.Text)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusCreated, comments, "comment added", nil)
	}
}

func (h *ContentHandler) Delete(kind entity.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.Engagement.Delete(c.Request.Context(), kind, c.Param("id"), currentEmail(c)); err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success[any](c, http.StatusOK, nil, string(kind)+" deleted", nil)
	}
}

func (h *ContentHandler) Join(c *gin.Context) {
	if err := h.Engagement.JoinCommunity(c.Request.Context(), c.Param("id"), currentEmail(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "joined", nil)
}

func (h *ContentHandler) CommunityTopics(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.Engagement.Get(ctx, entity.KindCommunity, c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	items, err := h.Engagement.List(ctx, repository.ContentFilter{Kind: entity.KindTopic, CommunityID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toContents(items), "ok", map[string]any{"count": len(items)})
}
