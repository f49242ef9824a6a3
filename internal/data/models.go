package data

import (
	"math"

	"github.com/suderio/draconic-rules/internal/rules"
)

// Effect is a flat bonus an equipped item gives to one statistic.
type Effect struct {
	Target string `json:"target" yaml:"target"`
	Value  int    `json:"value" yaml:"value"`
}

// Item is an inventory entry. Only equipped items contribute effects.
type Item struct {
	Name     string   `json:"name" yaml:"name"`
	Equipped bool     `json:"equipped" yaml:"equipped"`
	Effects  []Effect `json:"effects" yaml:"effects"`
}

// Armor describes the worn armor. Bonus is the armor's base AC.
type Armor struct {
	Type  string `json:"type" yaml:"type"`
	Bonus int    `json:"bonus" yaml:"bonus"`
}

// Character represents a character sheet document loaded from YAML or JSON.
type Character struct {
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
	// Abilities maps ability name to score, e.g. strength: 16.
	Abilities map[string]int `json:"abilities" yaml:"abilities"`
	// Skills maps skill name to proficiency level: proficient, expert or half.
	Skills map[string]string `json:"skills" yaml:"skills"`
	// SavingThrows maps ability name to proficiency level: proficient, expert or half.
	SavingThrows map[string]string `json:"saving_throws" yaml:"saving_throws"`
	// Advantages lists the rules the character rolls with advantage.
	Advantages []string `json:"advantages" yaml:"advantages"`
	Armor      Armor    `json:"armor" yaml:"armor"`
	Inventory  []Item   `json:"inventory" yaml:"inventory"`
}

// Normalize initializes nil maps and normalizes every rule name the
// document refers to, so lookups can use normalized names directly.
func (c *Character) Normalize() {
	c.Abilities = normalizeKeys(c.Abilities)
	c.Skills = normalizeKeys(c.Skills)
	c.SavingThrows = normalizeKeys(c.SavingThrows)
	for i := range c.Skills {
		c.Skills[i] = rules.NormalizeName(c.Skills[i])
	}
	for i := range c.SavingThrows {
		c.SavingThrows[i] = rules.NormalizeName(c.SavingThrows[i])
	}
	c.Advantages = rules.NormalizeNames(c.Advantages)
	if c.Inventory == nil {
		c.Inventory = make([]Item, 0)
	}
}

func normalizeKeys[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[rules.NormalizeName(k)] = v
	}
	return out
}

// EquipmentEffects sums the effects of every equipped item per normalized
// target name. Effects on the same target stack.
func (c *Character) EquipmentEffects() map[string]int {
	out := make(map[string]int)
	for _, item := range c.Inventory {
		if !item.Equipped {
			continue
		}
		for _, eff := range item.Effects {
			if target := rules.NormalizeName(eff.Target); target != "" {
				out[target] += eff.Value
			}
		}
	}
	return out
}

// HasAdvantage reports whether the character has advantage on a rule.
func (c *Character) HasAdvantage(rule string) bool {
	rule = rules.NormalizeName(rule)
	for _, a := range c.Advantages {
		if a == rule {
			return true
		}
	}
	return false
}

// CalculateModifier returns the standard D&D 5e ability modifier for a given score.
func CalculateModifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}
