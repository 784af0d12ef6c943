package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eventra/notify/internal/notify"
)

// RoutingRule selects the channels used when an application event is turned
// into a notification of a given kind.
type RoutingRule struct {
	// Enabled defaults to true; an explicit false suppresses notifications
	// of this kind entirely on the event path.
	Enabled *bool `yaml:"enabled"`
	// Channels names the channels to fan out to.
	Channels []string `yaml:"channels"`
}

// RoutingRules maps notification kinds to their delivery rules. Kinds with
// no rule fall back to in-app only, so an empty or missing file still
// produces visible notifications without touching external transports.
type RoutingRules struct {
	Kinds map[string]RoutingRule `yaml:"kinds"`
}

// defaultRoutingChannels is the fallback for kinds without a rule.
var defaultRoutingChannels = []notify.Channel{notify.ChannelInApp}

// LoadRoutingRules parses the routing rules YAML file. A missing file is not
// an error: it yields empty rules and every kind uses the fallback.
func LoadRoutingRules(path string) (*RoutingRules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from admin configuration
	if errors.Is(err, fs.ErrNotExist) {
		return &RoutingRules{Kinds: map[string]RoutingRule{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading routing rules %q: %w", path, err)
	}

	var rules RoutingRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing routing rules %q: %w", path, err)
	}
	if rules.Kinds == nil {
		rules.Kinds = map[string]RoutingRule{}
	}

	// Validate channel names up front so a typo surfaces at startup, not on
	// the first matching event.
	for kind, rule := range rules.Kinds {
		if _, err := notify.ParseChannels(rule.Channels); err != nil && len(rule.Channels) > 0 {
			return nil, fmt.Errorf("routing rule for kind %q: %w", kind, err)
		}
	}
	return &rules, nil
}

// ChannelsFor returns the channels to use for a notification kind and
// whether notifications of that kind are enabled at all.
func (r *RoutingRules) ChannelsFor(kind notify.Kind) ([]notify.Channel, bool) {
	rule, ok := r.Kinds[string(kind)]
	if !ok {
		return defaultRoutingChannels, true
	}
	if rule.Enabled != nil && !*rule.Enabled {
		return nil, false
	}
	if len(rule.Channels) == 0 {
		return defaultRoutingChannels, true
	}
	channels, err := notify.ParseChannels(rule.Channels)
	if err != nil {
		// Validated at load time; unreachable for rules that came from
		// LoadRoutingRules.
		return defaultRoutingChannels, true
	}
	return channels, true
}
