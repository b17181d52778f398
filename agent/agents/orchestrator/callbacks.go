package orchestrator

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
)

func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			if input == nil {
				return ctx
			}
			logx.Ctx(ctx).Debug().
				Str("model", info.Name).
				Int("messages", len(input.Messages)).
				Int("tools", len(input.Tools)).
				Msg("model call started")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			if output == nil || output.Message == nil {
				return ctx
			}
			event := logx.Ctx(ctx).Debug().
				Str("model", info.Name).
				Int("tool_calls", len(output.Message.ToolCalls))
			if output.TokenUsage != nil {
				event = event.
					Int("prompt_tokens", output.TokenUsage.PromptTokens).
					Int("completion_tokens", output.TokenUsage.CompletionTokens)
			}
			event.Msg("model call finished")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Ctx(ctx).Error().Err(err).Str("model", info.Name).Msg("model call failed")
			return ctx
		},
	}
}

func newToolHandler() *callbackHelper.ToolCallbackHandler {
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			if input != nil {
				logx.Ctx(ctx).Debug().Str("tool", info.Name).Str("arguments", input.ArgumentsInJSON).Msg("tool started")
			}
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			if output != nil {
				logx.Ctx(ctx).Debug().Str("tool", info.Name).Int("response_bytes", len(output.Response)).Msg("tool finished")
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Ctx(ctx).Info().Err(err).Str("tool", info.Name).Msg("tool returned an error result")
			return ctx
		},
	}
}

// newCallbacks aggregates the model and tool handlers attached to each run.
func newCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Tool(newToolHandler()).
		Handler()
}
