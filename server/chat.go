package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

type chatRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	UserID        string `json:"userId"`
	UserMessage   string `json:"userMessage"`
	AgentResponse string `json:"agentResponse"`
	Timestamp     string `json:"timestamp"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errx.Validation("userId and message are required"))
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Message) == "" {
		respondError(c, errx.Validation("userId and message are required"))
		return
	}

	reply := s.deps.Conversation.ProcessMessage(c.Request.Context(), req.UserID, req.Message)
	c.JSON(http.StatusOK, chatResponse{
		UserID:        req.UserID,
		UserMessage:   req.Message,
		AgentResponse: reply,
		Timestamp:     s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) clearHistory(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	s.deps.Conversation.ClearHistory(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "history cleared",
		"userId":  userID,
	})
}
