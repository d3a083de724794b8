// Package classify selects the most specific device class from two
// bootstrap attributes: the capability-layer bitmask ("layers") and the
// free-text system description.
//
// Classification is a two-stage state machine. The layers bitmask picks a
// tier (layer 3 over layer 2 over layer 1, generic when none is set), then
// an ordered list of case-insensitive description patterns refines the tier
// base class. Every matching rule overwrites the previous selection, so
// later rules take precedence when several match. Rule order is
// load-bearing and preserved exactly as given.
//
// The built-in ruleset can be extended or replaced wholesale, which is how
// configuration-driven overrides are wired in.
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnclassifiable means the bootstrap attributes needed for
// classification were unavailable. Callers fall back to the generic base
// class rather than failing construction.
var ErrUnclassifiable = errors.New("classify: bootstrap attributes unavailable")

// Tier base classes, indexed by the highest serviced OSI layer of
// interest.
const (
	ClassGeneric = "generic"
	ClassLayer1  = "layer1"
	ClassLayer2  = "layer2"
	ClassLayer3  = "layer3"
)

// Rule refines a tier base class when its pattern matches the device
// description. Patterns are compiled case-insensitive.
type Rule struct {
	// Tier restricts the rule to one tier: 1, 2 or 3. Zero applies the
	// rule in every tier.
	Tier int

	// Pattern is a regular expression matched against the description.
	Pattern string

	// Class is the class selected when the pattern matches.
	Class string

	re *regexp.Regexp
}

// Ruleset is an ordered list of classification rules.
type Ruleset struct {
	rules []Rule
}

// NewRuleset compiles rules in the given order. Order is significant:
// within a tier the last matching rule wins.
func NewRuleset(rules []Rule) (*Ruleset, error) {
	rs := &Ruleset{}
	for _, r := range rules {
		if err := rs.Append(r); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// Append compiles and adds a rule after all existing ones, giving it
// precedence over every earlier rule in the same tier.
func (rs *Ruleset) Append(r Rule) error {
	if r.Class == "" {
		return fmt.Errorf("classify: rule %q has no class", r.Pattern)
	}
	if r.Tier < 0 || r.Tier > 3 {
		return fmt.Errorf("classify: rule %q has invalid tier %d", r.Pattern, r.Tier)
	}
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("classify: rule %q: %w", r.Pattern, err)
	}
	r.re = re
	rs.rules = append(rs.rules, r)
	return nil
}

// Len returns the number of rules in the set.
func (rs *Ruleset) Len() int { return len(rs.rules) }

// DefaultRules returns the built-in ordered ruleset. The order within each
// tier is part of the observed contract: a description matching several
// rules lands on the one listed last.
func DefaultRules() *Ruleset {
	rs, err := NewRuleset([]Rule{
		// Layer 3.
		{Tier: 3, Pattern: `cisco`, Class: "ciscorouter"},
		{Tier: 3, Pattern: `catalyst|WS-C\d{4}`, Class: "catalyst"},
		{Tier: 3, Pattern: `juniper|junos`, Class: "juniper"},

		// Layer 2.
		{Tier: 2, Pattern: `cisco`, Class: "catalyst"},
		{Tier: 2, Pattern: `catalyst|WS-C\d{4}`, Class: "catalyst"},
		{Tier: 2, Pattern: `procurve|hp\b`, Class: "procurve"},
	})
	if err != nil {
		// The built-in patterns are constants; a compile failure is a
		// programming error.
		panic(err)
	}
	return rs
}

// HasLayer reports whether layer n (1-8) is set in an 8-character binary
// capability string, most-significant layer first. This is a character
// test at a fixed offset, not arithmetic on the decoded value.
func HasLayer(layers string, n int) bool {
	if n < 1 || n > 8 || len(layers) != 8 {
		return false
	}
	return layers[8-n] == '1'
}

// Classify returns the class identifier for a device given its layers
// bitmask and description.
//
// An absent or empty layers value is ErrUnclassifiable. A blank description
// skips the pattern stage and returns the tier base class.
func (rs *Ruleset) Classify(layers, description string) (string, error) {
	if layers == "" {
		return "", ErrUnclassifiable
	}

	var tier int
	var class string
	switch {
	case HasLayer(layers, 3):
		tier, class = 3, ClassLayer3
	case HasLayer(layers, 2):
		tier, class = 2, ClassLayer2
	case HasLayer(layers, 1):
		tier, class = 1, ClassLayer1
	default:
		// No network layers serviced; nothing to specialize.
		return ClassGeneric, nil
	}

	if strings.TrimSpace(description) == "" {
		return class, nil
	}

	for _, r := range rs.rules {
		if r.Tier != 0 && r.Tier != tier {
			continue
		}
		if r.re.MatchString(description) {
			class = r.Class
		}
	}
	return class, nil
}

// Classify runs the default ruleset.
func Classify(layers, description string) (string, error) {
	return DefaultRules().Classify(layers, description)
}
