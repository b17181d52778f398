package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/chative-wholesale-agent/agent/contract"
)

//go:embed template/system.txt
var systemRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	System string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System: strings.TrimSpace(systemRaw),
	}
}

// Validate fails when a required prompt is empty.
func (p PromptSet) Validate() error {
	if strings.TrimSpace(p.System) == "" {
		return fmt.Errorf("%w: system", contractx.ErrPromptMissing)
	}
	return nil
}
