package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/chative-wholesale-agent/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/chative-wholesale-agent/agent/state"
	toolx "github.com/tanpawarit/chative-wholesale-agent/agent/tool"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/metrics"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidUser    = nodex.ErrInvalidUser
)

const (
	DefaultMaxIterations = 8
	DefaultHistoryLimit  = statex.DefaultHistoryLimit
)

// Replies are the canned buyer-facing messages used when the model cannot
// produce an answer.
type Replies struct {
	Retry          string
	Restarted      string
	IterationLimit string
	Empty          string
}

func DefaultReplies() Replies {
	return Replies{
		Retry:          "Lo siento, tuve un problema procesando tu mensaje. ¿Podrías intentar de nuevo?",
		Restarted:      "Tuve un problema con nuestra conversación anterior y la reinicié. ¿Me repetís qué estás buscando?",
		IterationLimit: "No pude completar tu pedido en este momento. ¿Podrías reformularlo o darme más detalles?",
		Empty:          "Disculpá, no entendí bien. ¿Me contás qué prenda, color o talle buscás?",
	}
}

type Config struct {
	MaxIterations int `envconfig:"MAX_ITERATIONS" split_words:"true" default:"8"`
	HistoryLimit  int `envconfig:"HISTORY_LIMIT" split_words:"true" default:"20"`

	SystemPrompt string  `ignored:"true"`
	Replies      Replies `ignored:"true"`
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	defaults := DefaultReplies()
	if strings.TrimSpace(c.Replies.Retry) == "" {
		c.Replies.Retry = defaults.Retry
	}
	if strings.TrimSpace(c.Replies.Restarted) == "" {
		c.Replies.Restarted = defaults.Restarted
	}
	if strings.TrimSpace(c.Replies.IterationLimit) == "" {
		c.Replies.IterationLimit = defaults.IterationLimit
	}
	if strings.TrimSpace(c.Replies.Empty) == "" {
		c.Replies.Empty = defaults.Empty
	}
	return c
}

// Orchestrator runs one buyer message through the model and the commerce
// tools, persisting the conversation per user.
type Orchestrator struct {
	store     statex.Store
	chatModel einomodel.BaseChatModel
	tools     nodex.ToolRunner
	cfg       Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	callbacks   einocb.Handler

	now func() time.Time
}

// New binds the tool declarations to chatModel and compiles the message graph.
func New(
	store statex.Store,
	chatModel einomodel.ToolCallingChatModel,
	tools nodex.ToolRunner,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if tools == nil {
		return nil, errors.New("tool runner is required")
	}

	boundModel, err := chatModel.WithTools(toolx.Declarations())
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	o := &Orchestrator{
		store:     store,
		chatModel: boundModel,
		tools:     tools,
		cfg:       cfg.withDefaults(),
		callbacks: newCallbacks(),
		now:       time.Now,
	}

	graphRunner, err := o.compileProcessMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// ProcessMessage answers one buyer message. It never fails: errors are logged
// and mapped to one of the canned replies.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userID string, text string) string {
	logger := logx.Ctx(ctx).With().Str("user_id", userID).Logger()
	ctx = logger.WithContext(ctx)

	start := o.now()
	logger.Info().Int("chars", len(text)).Msg("message received")

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		UserID: userID,
		Text:   text,
	}, compose.WithCallbacks(o.callbacks))
	if err != nil {
		return o.replyForError(ctx, userID, err)
	}

	outcome := "ok"
	if out.LimitReached {
		outcome = "iteration_limit"
	}
	metrics.ObserveMessage(outcome)
	logger.Info().
		Str("outcome", outcome).
		Int("tool_calls", out.ToolCalls).
		Dur("elapsed", o.now().Sub(start)).
		Msg("reply generated")
	return out.Reply
}

func (o *Orchestrator) replyForError(ctx context.Context, userID string, err error) string {
	logger := logx.Ctx(ctx)

	switch {
	case errors.Is(err, errx.ErrCorruptSession):
		logger.Warn().Err(err).Msg("corrupt session, resetting history")
		if delErr := o.store.Delete(ctx, userID); delErr != nil {
			logger.Error().Err(delErr).Msg("delete corrupt session")
		}
		metrics.ObserveMessage("corrupt_session")
		return o.cfg.Replies.Restarted
	case errors.Is(err, ErrInvalidMessage), errors.Is(err, ErrInvalidUser):
		logger.Warn().Err(err).Msg("invalid chat request")
		metrics.ObserveMessage("invalid_request")
	default:
		logger.Error().Err(err).Msg("process message failed")
		metrics.ObserveMessage("error")
	}
	return o.cfg.Replies.Retry
}

// ClearHistory forgets the user's conversation. Store errors are logged only.
func (o *Orchestrator) ClearHistory(ctx context.Context, userID string) {
	if err := o.store.Delete(ctx, userID); err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("clear history failed")
		return
	}
	logx.Ctx(ctx).Info().Str("user_id", userID).Msg("history cleared")
}
