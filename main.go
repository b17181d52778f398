package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/chative-wholesale-agent/agent/agents/orchestrator"
	"github.com/tanpawarit/chative-wholesale-agent/agent/llm"
	"github.com/tanpawarit/chative-wholesale-agent/agent/prompt"
	statex "github.com/tanpawarit/chative-wholesale-agent/agent/state"
	toolx "github.com/tanpawarit/chative-wholesale-agent/agent/tool"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/cart"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
	configx "github.com/tanpawarit/chative-wholesale-agent/pkg/config"
	geminix "github.com/tanpawarit/chative-wholesale-agent/pkg/gemini"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	openrouterx "github.com/tanpawarit/chative-wholesale-agent/pkg/openrouter"
	postgresx "github.com/tanpawarit/chative-wholesale-agent/pkg/postgres"
	redisx "github.com/tanpawarit/chative-wholesale-agent/pkg/redis"
	twiliox "github.com/tanpawarit/chative-wholesale-agent/pkg/twilio"
	"github.com/tanpawarit/chative-wholesale-agent/server"
)

var (
	seedPath = flag.String("seed", "", "path to a products .xlsx file to import before serving")
	seedOnly = flag.Bool("seed-only", false, "exit after importing -seed")
)

func main() {
	// Flags must be registered before configx parses the command line.
	logx.Init(*configx.MustNew[logx.Config]("LOG"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[server.Config]("APP")

	productRepo, cartRepo, db := mustRepositories(ctx)
	if db != nil {
		defer db.Close()
	}

	if path := strings.TrimSpace(*seedPath); path != "" {
		report, err := catalog.Import(ctx, productRepo, path)
		if err != nil {
			logx.Fatal().Err(err).Str("path", path).Msg("seed catalog")
		}
		logx.Info().Int("imported", report.Imported).Int("skipped", report.Skipped).Msg("catalog seeded")
	}
	if *seedOnly {
		return
	}

	products := catalog.NewService(productRepo)
	carts := cart.NewService(cartRepo, products)

	dispatcher, err := toolx.NewDispatcher(products, carts)
	if err != nil {
		logx.Fatal().Err(err).Msg("build tool dispatcher")
	}

	llmCfg := configx.MustNew[llm.Config]("LLM")
	chatModel, err := llm.NewChatModel(ctx, *llmCfg, mustProviders(*llmCfg))
	if err != nil {
		logx.Fatal().Err(err).Msg("build chat model")
	}

	prompts := prompt.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		logx.Fatal().Err(err).Msg("load prompts")
	}

	orchCfg := configx.MustNew[orchestrator.Config]("ORCHESTRATOR")
	orchCfg.SystemPrompt = prompts.System
	agent, err := orchestrator.New(mustSessionStore(ctx), chatModel, dispatcher, *orchCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("build orchestrator")
	}

	twilioCfg := configx.MustNew[twiliox.Config]("TWILIO")
	if twilioCfg.ValidateWebhook && strings.TrimSpace(twilioCfg.AuthToken) == "" {
		logx.Fatal().Msg("TWILIO_AUTH_TOKEN is required when webhook validation is enabled")
	}
	whatsapp := twiliox.MustNew(*twilioCfg)
	if !whatsapp.Configured() {
		logx.Warn().Msg("twilio credentials missing, whatsapp replies are disabled")
	}
	if !twilioCfg.ValidateWebhook {
		logx.Warn().Msg("twilio webhook signature validation is disabled")
	}

	srv, err := server.New(*appCfg, server.Deps{
		Products:     products,
		Carts:        carts,
		Conversation: agent,
		WhatsApp:     whatsapp,
		Webhook: server.WebhookOptions{
			ValidateSignature: twilioCfg.ValidateWebhook,
			PublicURL:         twilioCfg.PublicURL,
		},
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("build http server")
	}

	if err := srv.Run(ctx); err != nil {
		logx.Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}
	logx.Info().Msg("server exited")
}

// mustRepositories returns Postgres repositories when DB_DSN is set and
// in-memory ones otherwise.
func mustRepositories(ctx context.Context) (catalog.Repository, cart.Repository, *bun.DB) {
	dbCfg := configx.MustNew[postgresx.Config]("DB")
	if !dbCfg.Enabled() {
		logx.Warn().Msg("DB_DSN not set, using in-memory catalog and carts")
		return catalog.NewMemoryRepository(), cart.NewMemoryRepository(), nil
	}

	db := dbCfg.MustNew(ctx)
	productRepo := catalog.NewBunRepository(db)
	if err := productRepo.CreateSchema(ctx); err != nil {
		logx.Fatal().Err(err).Msg("create products schema")
	}
	cartRepo := cart.NewBunRepository(db)
	if err := cartRepo.CreateSchema(ctx); err != nil {
		logx.Fatal().Err(err).Msg("create carts schema")
	}
	logx.Info().Msg("using postgres repositories")
	return productRepo, cartRepo, db
}

func mustProviders(llmCfg llm.Config) llm.Providers {
	var p llm.Providers
	switch llmCfg.ProviderName() {
	case llm.ProviderGemini:
		p.Gemini = *configx.MustNew[geminix.Config]("GEMINI")
	default:
		p.OpenRouter = *configx.MustNew[openrouterx.Config]("OPENROUTER")
	}
	return p
}

func mustSessionStore(ctx context.Context) statex.Store {
	sessionCfg := configx.MustNew[statex.Config]("SESSION")

	var (
		store statex.Store
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(sessionCfg.Backend)) {
	case statex.BackendRedis:
		rdb := configx.MustNew[redisx.Config]("REDIS").MustNew(ctx)
		store, err = statex.NewRedisStore(rdb, sessionCfg.Options()...)
	case statex.BackendUpstash:
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err = statex.NewUpstashRedisStore(*upstashCfg, sessionCfg.Options()...)
	default:
		store = statex.NewMemoryStore()
	}
	if err != nil {
		logx.Fatal().Err(err).Str("backend", sessionCfg.Backend).Msg("build session store")
	}
	logx.Info().Str("backend", sessionCfg.Backend).Msg("session store ready")
	return store
}
