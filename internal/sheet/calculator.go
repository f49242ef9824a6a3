package sheet

import (
	"math"

	"github.com/suderio/draconic-rules/internal/data"
	"github.com/suderio/draconic-rules/internal/engine"
	"github.com/suderio/draconic-rules/internal/rules"

	"go.uber.org/zap"
)

// Entry is one computed statistic.
type Entry struct {
	Name        string
	RussianName string
	Value       float64
	// Score is the ability score for ability entries, 0 otherwise.
	Score int
	// Stat is the ability a skill or saving throw is based on.
	Stat string
	// Proficiency is the proficiency level used as a filter, if any.
	Proficiency string
	Formula     string
	Display     string
	// Fallback is set when the built-in calculation replaced the rule data,
	// because the rule is missing, no formula applied, or evaluation failed.
	Fallback bool
	Err      error
}

// Sheet is the computed character sheet.
type Sheet struct {
	Name              string
	Level             int
	Abilities         []Entry
	ProficiencyBonus  Entry
	Skills            []Entry
	SavingThrows      []Entry
	ArmorClass        Entry
	Initiative        Entry
	PassivePerception Entry
	// Context is the evaluation context after every value was derived.
	Context map[string]float64
}

// Entries returns every entry in sheet order.
func (s *Sheet) Entries() []Entry {
	out := make([]Entry, 0, len(s.Abilities)+len(s.Skills)+len(s.SavingThrows)+4)
	out = append(out, s.Abilities...)
	out = append(out, s.ProficiencyBonus)
	out = append(out, s.Skills...)
	out = append(out, s.SavingThrows...)
	out = append(out, s.ArmorClass, s.Initiative, s.PassivePerception)
	return out
}

// Values maps every entry name to its value.
func (s *Sheet) Values() map[string]float64 {
	out := make(map[string]float64)
	for _, e := range s.Entries() {
		out[e.Name] = e.Value
	}
	return out
}

// Calculator derives a Sheet from a character using the rule registry,
// falling back to the standard 5e calculations when rule data is missing.
type Calculator struct {
	reg *rules.Registry
	ev  *engine.Evaluator
	log *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger that records fallbacks.
func WithLogger(log *zap.Logger) Option {
	return func(c *Calculator) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCalculator creates a Calculator.
func NewCalculator(reg *rules.Registry, ev *engine.Evaluator, opts ...Option) *Calculator {
	c := &Calculator{reg: reg, ev: ev, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute derives every statistic in dependency order: abilities,
// proficiency bonus, skills, saving throws, armor class, initiative and
// passive perception. Each value is added to the context for the next ones.
func (c *Calculator) Compute(ch *data.Character) *Sheet {
	ctx := ContextFor(ch)
	effects := ch.EquipmentEffects()
	s := &Sheet{Name: ch.Name, Level: ch.Level, Context: ctx}

	for _, ability := range rules.Abilities {
		score := int(ctx[ValueToken(ability)])
		e := c.derive(ability, nil, withEffects(ctx, 0), float64(data.CalculateModifier(score)))
		e.Score = score
		ctx[ModToken(ability)] = e.Value
		s.Abilities = append(s.Abilities, e)
	}

	s.ProficiencyBonus = c.derive("proficiency_bonus", nil, withEffects(ctx, 0), ctx[TokenProficiencyBonus])
	ctx[TokenProficiencyBonus] = s.ProficiencyBonus.Value
	pb := s.ProficiencyBonus.Value

	for _, skill := range c.reg.SkillNames() {
		stat, _ := c.reg.PrimaryStatForSkill(skill)
		prof := ch.Skills[skill]
		delta := effects[skill]

		fallback := ctx[ModToken(stat)] + proficiencyMultiplier(prof, pb) + float64(delta)
		e := c.derive(skill, proficiencyFilter(prof), withEffects(ctx, delta), fallback)
		e.Stat = stat
		e.Proficiency = prof
		ctx[rules.NormalizeToken(skill)] = e.Value
		s.Skills = append(s.Skills, e)
	}

	for _, ability := range rules.Abilities {
		name := savingThrowRule(ability)
		prof := ch.SavingThrows[ability]
		delta := effects[name]

		fallback := ctx[ModToken(ability)] + proficiencyMultiplier(prof, pb) + float64(delta)
		e := c.derive(name, proficiencyFilter(prof), withEffects(ctx, delta), fallback)
		e.Stat = ability
		e.Proficiency = prof
		s.SavingThrows = append(s.SavingThrows, e)
	}

	armor := data.ParseArmorType(ch.Armor.Type)
	acDelta := effects["armor_class"]
	s.ArmorClass = c.derive("armor_class", map[string]string{"armor_type": armor.String()},
		withEffects(ctx, acDelta), defaultArmorClass(armor, ctx)+float64(acDelta))
	ctx["ARMOR_CLASS"] = s.ArmorClass.Value

	initDelta := effects["initiative"]
	s.Initiative = c.derive("initiative", nil, withEffects(ctx, initDelta),
		ctx[ModToken("dexterity")]+float64(initDelta))
	ctx["INITIATIVE"] = s.Initiative.Value

	if _, ok := ctx["PERCEPTION"]; !ok {
		ctx["PERCEPTION"] = ctx[ModToken("wisdom")]
	}
	ppDelta := effects["passive_perception"]
	ppFallback := 10 + ctx["PERCEPTION"] + float64(ppDelta)
	var ppFilters map[string]string
	if ch.HasAdvantage("perception") || ch.HasAdvantage("passive_perception") {
		ppFilters = map[string]string{"advantage": "true"}
		ppFallback += 5
	}
	s.PassivePerception = c.derive("passive_perception", ppFilters, withEffects(ctx, ppDelta), ppFallback)
	ctx["PASSIVE_PERCEPTION"] = s.PassivePerception.Value

	return s
}

// derive evaluates one rule, using fallback when the rule data cannot
// produce a value.
func (c *Calculator) derive(name string, filters map[string]string, ctx map[string]float64, fallback float64) Entry {
	e := Entry{Name: name}
	if rule, ok := c.reg.Rule(name); ok {
		e.RussianName = rule.RussianName
	}

	res, ok := c.ev.EvaluateRule(c.reg, name, filters, ctx)
	switch {
	case !ok:
		c.log.Debug("no formula applies, using built-in calculation", zap.String("rule", name))
	case res.Err != nil:
		c.log.Warn("rule formula failed, using built-in calculation",
			zap.String("rule", name), zap.String("formula", res.Formula), zap.Error(res.Err))
		e.Formula = res.Formula
		e.Err = res.Err
	default:
		e.Value = res.Value
		e.Formula = res.Formula
		e.Display = res.Display
		return e
	}

	e.Value = fallback
	e.Fallback = true
	return e
}

func proficiencyFilter(prof string) map[string]string {
	if prof == "" {
		return nil
	}
	return map[string]string{"proficiency": prof}
}

func proficiencyMultiplier(prof string, pb float64) float64 {
	switch prof {
	case "half":
		return math.Floor(pb / 2)
	case "proficient":
		return pb
	case "expert":
		return 2 * pb
	}
	return 0
}

func defaultArmorClass(armor data.ArmorType, ctx map[string]float64) float64 {
	dex := ctx[ModToken("dexterity")]
	bonus := ctx[TokenArmorBonus]
	switch armor {
	case data.ArmorLight:
		return bonus + dex
	case data.ArmorMedium:
		return bonus + math.Min(dex, 2)
	case data.ArmorHeavy:
		return bonus
	}
	return BaseAC + dex
}
