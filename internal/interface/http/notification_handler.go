package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/pkg/response"
)

type NotificationHandler struct {
	Notifier *application.Notifier
	Logger   *logrus.Logger
}

func NewNotificationHandler(n *application.Notifier, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Notifier: n, Logger: logger}
}

type notificationResponse struct {
	ID          string                  `json:"id"`
	Kind        entity.NotificationKind `json:"kind"`
	ActorEmail  string                  `json:"actor_email"`
	ActorName   string                  `json:"actor_name"`
	ActorAvatar string                  `json:"actor_avatar"`
	Text        string                  `json:"text"`
	PreviewURL  string                  `json:"preview_image_url,omitempty"`
	IsRead      bool                    `json:"is_read"`
	CreatedAt   time.Time               `json:"created_at"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.Notifier.List(c.Request.Context(), currentEmail(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]notificationResponse, 0, len(items))
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
		out = append(out, notificationResponse{
			ID:          n.ID,
			Kind:        n.Kind,
			ActorEmail:  n.ActorEmail,
			ActorName:   n.ActorName,
			ActorAvatar: n.ActorAvatar,
			Text:        n.Text,
			PreviewURL:  n.PreviewURL,
			IsRead:      n.Read,
			CreatedAt:   n.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "ok", map[string]any{"unread": unread})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.Notifier.MarkAllRead(c.Request.Context(), currentEmail(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "notifications marked as read", nil)
}
