package sheet

import (
	"strings"

	"github.com/suderio/draconic-rules/internal/data"
	"github.com/suderio/draconic-rules/internal/rules"
)

// BaseAC is the armor class of an unarmored character before modifiers.
const BaseAC = 10

// Context token names shared with rule content. Rule formulas written for
// the sheet rely on these exact names.
const (
	TokenLevel            = "LEVEL"
	TokenProficiencyBonus = "PROFICIENCY_BONUS"
	TokenEquipmentEffects = "EQUIPMENT_EFFECTS"
	TokenArmorBonus       = "ARMOR_BONUS"
	TokenBaseAC           = "BASE_AC"
)

// ValueToken returns the token holding an ability score, e.g. STRENGTH_VALUE.
func ValueToken(ability string) string {
	return rules.NormalizeToken(ability) + "_VALUE"
}

// ModToken returns the token holding an ability modifier, e.g. STRENGTH_MOD.
func ModToken(ability string) string {
	return rules.NormalizeToken(ability) + "_MOD"
}

// ContextFor converts a character into the base evaluation context: ability
// scores with their equipment bonuses, fallback modifiers, level, armor and
// the default proficiency bonus. Compute refines the modifiers and the
// proficiency bonus with rule formulas.
func ContextFor(c *data.Character) map[string]float64 {
	effects := c.EquipmentEffects()
	ctx := map[string]float64{
		TokenLevel:            float64(c.Level),
		TokenProficiencyBonus: float64(defaultProficiencyBonus(c.Level)),
		TokenArmorBonus:       float64(c.Armor.Bonus),
		TokenBaseAC:           BaseAC,
		TokenEquipmentEffects: 0,
	}
	for _, ability := range rules.Abilities {
		score := abilityScore(c, ability) + effects[ability]
		ctx[ValueToken(ability)] = float64(score)
		ctx[ModToken(ability)] = float64(data.CalculateModifier(score))
	}
	return ctx
}

func abilityScore(c *data.Character, ability string) int {
	if score, ok := c.Abilities[ability]; ok {
		return score
	}
	return 10
}

func defaultProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return (level-1)/4 + 2
}

// withEffects copies ctx and sets EQUIPMENT_EFFECTS for one rule.
func withEffects(ctx map[string]float64, delta int) map[string]float64 {
	out := make(map[string]float64, len(ctx)+1)
	for k, v := range ctx {
		out[k] = v
	}
	out[TokenEquipmentEffects] = float64(delta)
	return out
}

// savingThrowRule names the saving throw rule of an ability.
func savingThrowRule(ability string) string {
	return "saving_throw_" + strings.ToLower(ability)
}
