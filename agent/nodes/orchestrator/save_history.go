package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	statex "github.com/tanpawarit/chative-wholesale-agent/agent/state"
)

// SaveHistory appends this exchange to the loaded history, trims it to limit
// turns and persists it. Trim keeps the stored history starting on a user turn.
func SaveHistory(ctx context.Context, in *GraphState, store statex.Store, limit int) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}

	next := make(statex.History, 0, len(in.History)+len(in.Turns))
	next = append(next, in.History...)
	next = append(next, in.Turns...)
	next = statex.Trim(next, limit)

	if err := store.Set(ctx, in.UserID, next); err != nil {
		return nil, fmt.Errorf("save history user=%s: %w", in.UserID, err)
	}
	in.History = next
	return in, nil
}
