package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/concesa/salesagent/internal/utils"
)

// PromptStyle selects which persona prompt a profile installs.
type PromptStyle string

const (
	StyleMinimal      PromptStyle = "minimal"
	StyleStandard     PromptStyle = "standard"
	StyleProfessional PromptStyle = "professional"
)

// Profile bundles the model parameters and persona for one agent configuration.
// Profiles trade answer quality against token spend; the set is fixed at
// startup and selected through AGENT_PROFILE.
type Profile struct {
	Name        string
	Model       string
	Temperature float64
	MaxTokens   int
	Style       PromptStyle
}

var profiles = map[string]Profile{
	"economical": {
		Name:        "economical",
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   200,
		Style:       StyleMinimal,
	},
	"balanced": {
		Name:        "balanced",
		Model:       "gpt-4o-mini",
		Temperature: 0.5,
		MaxTokens:   350,
		Style:       StyleStandard,
	},
	"premium": {
		Name:        "premium",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   500,
		Style:       StyleProfessional,
	},
}

// ProfileByName resolves a profile by its configuration key.
func ProfileByName(name string) (Profile, error) {
	const op = "agent.ProfileByName"

	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, utils.E(utils.CodeInvalidArgument, op,
			fmt.Sprintf("unknown agent profile %q, valid profiles: %s", name, strings.Join(ProfileNames(), ", ")), nil)
	}
	return p, nil
}

// ProfileNames lists the available profile keys in stable order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
