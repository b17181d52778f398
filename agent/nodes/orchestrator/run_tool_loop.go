package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
)

// ToolRunner executes one raw tool call from the model.
type ToolRunner interface {
	Execute(ctx context.Context, name string, rawArgs string) contractx.ToolResult
}

type LoopConfig struct {
	SystemPrompt  string
	MaxIterations int
	// LimitReply is the assistant turn recorded when MaxIterations is hit.
	LimitReply string
	// EmptyReply is recorded when the model answers with no text.
	EmptyReply string
}

// RunToolLoop drives the model until it answers in plain text. Every tool
// call is executed in model order and its result is fed back as a tool turn.
func RunToolLoop(
	ctx context.Context,
	in *GraphState,
	chatModel einomodel.BaseChatModel,
	tools ToolRunner,
	cfg LoopConfig,
) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}

	userTurn := schema.UserMessage(in.Text)
	in.Turns = []*schema.Message{userTurn}

	messages := make([]*schema.Message, 0, len(in.History)+2)
	if prompt := strings.TrimSpace(cfg.SystemPrompt); prompt != "" {
		messages = append(messages, schema.SystemMessage(prompt))
	}
	messages = append(messages, in.History...)
	messages = append(messages, userTurn)

	for {
		msg, err := generate(ctx, chatModel, messages)
		if err != nil {
			return nil, errx.Upstream(fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err), "model invoke failed")
		}
		if msg == nil {
			return nil, errx.Upstream(contractx.ErrModelInvoke, "model returned no message")
		}

		if len(msg.ToolCalls) == 0 {
			in.Reply = strings.TrimSpace(msg.Content)
			if in.Reply == "" {
				in.Reply = cfg.EmptyReply
			}
			if in.Reply != "" {
				in.Turns = append(in.Turns, schema.AssistantMessage(in.Reply, nil))
			}
			return in, nil
		}

		if in.Iterations >= cfg.MaxIterations {
			logx.Ctx(ctx).Warn().
				Str("user_id", in.UserID).
				Int("iterations", in.Iterations).
				Msg("tool iteration limit reached")
			in.LimitReached = true
			in.Reply = cfg.LimitReply
			if in.Reply != "" {
				in.Turns = append(in.Turns, schema.AssistantMessage(in.Reply, nil))
			}
			return in, nil
		}
		in.Iterations++

		assistant := schema.AssistantMessage(msg.Content, msg.ToolCalls)
		messages = append(messages, assistant)
		in.Turns = append(in.Turns, assistant)

		for _, call := range msg.ToolCalls {
			result := runTool(ctx, tools, call)
			in.ToolCalls++

			toolTurn := schema.ToolMessage(result.Payload(), call.ID, schema.WithToolName(call.Function.Name))
			messages = append(messages, toolTurn)
			in.Turns = append(in.Turns, toolTurn)
		}
	}
}

func runTool(ctx context.Context, tools ToolRunner, call schema.ToolCall) contractx.ToolResult {
	name := strings.TrimSpace(call.Function.Name)
	logx.Ctx(ctx).Info().
		Str("tool", name).
		Str("call_id", call.ID).
		Str("arguments", call.Function.Arguments).
		Msg("model requested tool")

	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      name,
		Type:      "CommerceTool",
		Component: components.ComponentOfTool,
	})
	ctx = callbacks.OnStart(ctx, &einotool.CallbackInput{ArgumentsInJSON: call.Function.Arguments})
	result := tools.Execute(ctx, name, call.Function.Arguments)
	if result.Failed {
		callbacks.OnError(ctx, errors.New(result.Message))
	} else {
		callbacks.OnEnd(ctx, &einotool.CallbackOutput{Response: result.Payload()})
	}
	return result
}

// generate runs one model call under a chat model RunInfo. Models that do not
// report their own callbacks are wrapped here.
func generate(ctx context.Context, chatModel einomodel.BaseChatModel, messages []*schema.Message) (*schema.Message, error) {
	typ, _ := components.GetType(chatModel)
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      "chat_model",
		Type:      typ,
		Component: components.ComponentOfChatModel,
	})
	if components.IsCallbacksEnabled(chatModel) {
		return chatModel.Generate(ctx, messages)
	}

	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{Messages: messages})
	msg, err := chatModel.Generate(ctx, messages)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, err
	}
	callbacks.OnEnd(ctx, &einomodel.CallbackOutput{Message: msg})
	return msg, nil
}
