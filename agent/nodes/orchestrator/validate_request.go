package orchestratornode

import (
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	statex "github.com/tanpawarit/chative-wholesale-agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidUser    = errors.New("user id is empty")
)

type GraphInput struct {
	UserID string
	Text   string
}

type GraphOutput struct {
	Reply        string
	LimitReached bool
	ToolCalls    int
}

type GraphState struct {
	UserID string
	Text   string
	Now    time.Time

	History statex.History
	// Turns are the messages produced by this exchange, starting with the
	// user turn.
	Turns []*schema.Message

	Reply        string
	Iterations   int
	ToolCalls    int
	LimitReached bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		UserID: userID,
		Text:   text,
		Now:    nowFn().UTC(),
	}, nil
}
