package state

import (
	"github.com/cloudwego/eino/schema"
)

// DefaultHistoryLimit is the number of turns kept per user.
const DefaultHistoryLimit = 20

// History is the ordered turn log of one user. Assistant turns may carry tool
// calls, and tool turns carry the matching results.
type History []*schema.Message

// IsCorrupt reports whether a non-empty history starts with a non-user turn.
func (h History) IsCorrupt() bool {
	return len(h) > 0 && (h[0] == nil || h[0].Role != schema.User)
}

// Repair returns the longest suffix of h that starts with a user turn, or an
// empty history when there is none. Repair(Repair(h)) == Repair(h).
func Repair(h History) History {
	for i, m := range h {
		if m != nil && m.Role == schema.User {
			return h[i:]
		}
	}
	return History{}
}

// Trim keeps the most recent limit turns and repairs the result, since the cut
// may have dropped the leading user turn.
func Trim(h History, limit int) History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	return Repair(h)
}

// Clone copies the slice and every message so callers cannot alias stored turns.
func (h History) Clone() History {
	out := make(History, 0, len(h))
	for _, m := range h {
		if m == nil {
			continue
		}
		cp := *m
		if len(m.ToolCalls) > 0 {
			cp.ToolCalls = append([]schema.ToolCall(nil), m.ToolCalls...)
		}
		out = append(out, &cp)
	}
	return out
}
