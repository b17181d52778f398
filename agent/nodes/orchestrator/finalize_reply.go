package orchestratornode

import (
	"errors"
	"strings"
)

// FinalizeReply returns the trimmed reply, or fallback when the model answered
// with nothing.
func FinalizeReply(in *GraphState, fallback string) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, errors.New("graph state is nil")
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		reply = fallback
	}
	return GraphOutput{
		Reply:        reply,
		LimitReached: in.LimitReached,
		ToolCalls:    in.ToolCalls,
	}, nil
}
