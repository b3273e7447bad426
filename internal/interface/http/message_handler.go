package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/pkg/response"
	"github.com/oksasatya/midnight-circuit/pkg/validation"
)

type MessageHandler struct {
	Messages *application.Messages
	Logger   *logrus.Logger
}

func NewMessageHandler(m *application.Messages, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{Messages: m, Logger: logger}
}

type sendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

func (h *MessageHandler) Conversation(c *gin.Context) {
	msgs, err := h.Messages.Conversation(c.Request.Context(), currentEmail(c), c.Param("email"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, msgs, "ok", nil)
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	msg, err := h.Messages.Send(c.Request.Context(), currentEmail(c), c.Param("email"), req.Text)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, msg, "message sent", nil)
}
