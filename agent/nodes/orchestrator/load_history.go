package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	statex "github.com/tanpawarit/chative-wholesale-agent/agent/state"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
)

// LoadHistory reads the stored session. A missing session starts empty, and a
// stored history that does not open with a user turn is cut back to its
// longest suffix that does.
func LoadHistory(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}

	history, err := store.Get(ctx, in.UserID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		history = statex.History{}
	case err != nil:
		return nil, fmt.Errorf("load history user=%s: %w", in.UserID, err)
	}

	if history.IsCorrupt() {
		repaired := statex.Repair(history)
		logx.Ctx(ctx).Warn().
			Str("user_id", in.UserID).
			Int("dropped", len(history)-len(repaired)).
			Msg("history repaired")
		history = repaired
	}

	in.History = history
	return in, nil
}
