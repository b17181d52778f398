package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	twiliox "github.com/tanpawarit/chative-wholesale-agent/pkg/twilio"
)

const twilioSignatureHeader = "X-Twilio-Signature"

// verifyTwilioSignature rejects webhook calls whose signature does not match
// the request URL and form body.
func (s *Server) verifyTwilioSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.deps.Webhook.ValidateSignature {
			c.Next()
			return
		}

		logger := logx.Ctx(c.Request.Context())
		signature := c.GetHeader(twilioSignatureHeader)
		if signature == "" {
			logger.Warn().Msg("webhook without twilio signature")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "missing twilio signature"})
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "validation_error", Message: "invalid form body"})
			return
		}
		if s.deps.WhatsApp == nil || !s.deps.WhatsApp.ValidateSignature(signature, s.webhookURL(c), c.Request.PostForm) {
			logger.Error().Msg("invalid twilio signature")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "invalid twilio signature"})
			return
		}
		c.Next()
	}
}

// webhookURL rebuilds the URL Twilio signed.
func (s *Server) webhookURL(c *gin.Context) string {
	if base := strings.TrimRight(strings.TrimSpace(s.deps.Webhook.PublicURL), "/"); base != "" {
		return base + c.Request.URL.RequestURI()
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

type whatsappMessage struct {
	From        string `form:"From"`
	To          string `form:"To"`
	Body        string `form:"Body"`
	ProfileName string `form:"ProfileName"`
	MessageSid  string `form:"MessageSid"`
}

// whatsappWebhook acknowledges immediately. The reply is produced and sent in
// the background, bounded by WhatsAppProcessTimeout.
func (s *Server) whatsappWebhook(c *gin.Context) {
	var msg whatsappMessage
	if err := c.ShouldBind(&msg); err != nil {
		c.String(http.StatusOK, "OK")
		return
	}

	logger := logx.Ctx(c.Request.Context()).With().
		Str("message_sid", msg.MessageSid).
		Str("profile_name", msg.ProfileName).
		Logger()

	if strings.TrimSpace(msg.Body) == "" || strings.TrimSpace(msg.From) == "" {
		logger.Debug().Msg("ignoring whatsapp webhook without body")
		c.String(http.StatusOK, "OK")
		return
	}

	userID := twiliox.PhoneNumber(msg.From)
	c.String(http.StatusOK, "OK")

	ctx := logger.WithContext(context.Background())
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.processWhatsApp(ctx, userID, msg.Body)
	}()
}

func (s *Server) processWhatsApp(ctx context.Context, userID string, body string) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WhatsAppProcessTimeout)
	defer cancel()

	logger := logx.Ctx(ctx)
	reply := s.deps.Conversation.ProcessMessage(ctx, userID, body)

	if s.deps.WhatsApp == nil || !s.deps.WhatsApp.Configured() {
		logger.Warn().Str("user_id", userID).Msg("whatsapp is not configured, reply dropped")
		return
	}
	sid, err := s.deps.WhatsApp.SendWhatsApp(ctx, userID, reply)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("send whatsapp reply failed")
		return
	}
	logger.Info().Str("user_id", userID).Str("sid", sid).Msg("whatsapp reply sent")
}

func (s *Server) whatsappStatus(c *gin.Context) {
	configured := s.deps.WhatsApp != nil && s.deps.WhatsApp.Configured()
	number := ""
	if configured {
		number = s.deps.WhatsApp.WhatsAppNumber()
	}
	c.JSON(http.StatusOK, gin.H{
		"configured":     configured,
		"whatsappNumber": number,
	})
}
