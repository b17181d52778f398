package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/cart"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/metrics"
)

type Config struct {
	Port            int           `split_words:"true" default:"8080"`
	CorsOrigins     []string      `envconfig:"CORS_ORIGINS" split_words:"true" default:"*"`
	ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
	// WhatsAppProcessTimeout bounds the background handling of one webhook.
	WhatsAppProcessTimeout time.Duration `envconfig:"WHATSAPP_PROCESS_TIMEOUT" split_words:"true" default:"60s"`
}

type ProductService interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
}

type CartService interface {
	Create(ctx context.Context, items []cart.LineInput) (*cart.Cart, error)
	Update(ctx context.Context, cartID int64, items []cart.LineInput) (*cart.Cart, error)
	Get(ctx context.Context, cartID int64) (*cart.Cart, error)
}

// WhatsAppSender is the outbound side of the WhatsApp channel.
type WhatsAppSender interface {
	Configured() bool
	WhatsAppNumber() string
	SendWhatsApp(ctx context.Context, to string, body string) (string, error)
	ValidateSignature(signature string, fullURL string, params url.Values) bool
}

// WebhookOptions controls inbound webhook verification.
type WebhookOptions struct {
	ValidateSignature bool
	// PublicURL replaces scheme and host when rebuilding the signed URL, for
	// deployments behind a tunnel or proxy.
	PublicURL string
}

type Deps struct {
	Products     ProductService
	Carts        CartService
	Conversation contractx.Conversation
	WhatsApp     WhatsAppSender
	Webhook      WebhookOptions
}

type Server struct {
	cfg    Config
	deps   Deps
	engine *gin.Engine

	jobs sync.WaitGroup
	now  func() time.Time
}

func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Products == nil {
		return nil, errors.New("product service is required")
	}
	if deps.Carts == nil {
		return nil, errors.New("cart service is required")
	}
	if deps.Conversation == nil {
		return nil, errors.New("conversation is required")
	}
	if cfg.WhatsAppProcessTimeout <= 0 {
		cfg.WhatsAppProcessTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{cfg: cfg, deps: deps, now: time.Now}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(logx.RequestLogger(), gin.Recovery(), metrics.Middleware(), cors.New(corsConfig(s.cfg.CorsOrigins)))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	products := r.Group("/products")
	{
		products.GET("", s.searchProducts)
		products.GET("/:id", s.getProduct)
	}

	carts := r.Group("/carts")
	{
		carts.POST("", s.createCart)
		carts.GET("/:id", s.getCart)
		carts.PATCH("/:id", s.updateCart)
	}

	agent := r.Group("/ai-agent")
	{
		agent.POST("/chat", s.chat)
		agent.DELETE("/history/:userId", s.clearHistory)
	}

	whatsapp := r.Group("/whatsapp")
	{
		whatsapp.POST("/webhook", s.verifyTwilioSignature(), s.whatsappWebhook)
		whatsapp.POST("/status", s.whatsappStatus)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, logx.RequestIDHeader)
	cfg.ExposeHeaders = []string{logx.RequestIDHeader}

	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if len(cleaned) == 0 || (len(cleaned) == 1 && cleaned[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = cleaned
	return cfg
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// background webhook jobs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Int("port", s.cfg.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logx.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.Wait()
	return nil
}

// Wait blocks until every background webhook job has finished.
func (s *Server) Wait() {
	s.jobs.Wait()
}
