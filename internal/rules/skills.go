package rules

import "sort"

// defaultSkillStats maps the 18 standard skills to their ability score. It
// backs PrimaryStatForSkill and SkillNames when rule data is incomplete.
var defaultSkillStats = map[string]string{
	"acrobatics":      "dexterity",
	"animal_handling": "wisdom",
	"arcana":          "intelligence",
	"athletics":       "strength",
	"deception":       "charisma",
	"history":         "intelligence",
	"insight":         "wisdom",
	"intimidation":    "charisma",
	"investigation":   "intelligence",
	"medicine":        "wisdom",
	"nature":          "intelligence",
	"perception":      "wisdom",
	"performance":     "charisma",
	"persuasion":      "charisma",
	"religion":        "intelligence",
	"sleight_of_hand": "dexterity",
	"stealth":         "dexterity",
	"survival":        "wisdom",
}

// Abilities lists the six ability scores in sheet order.
var Abilities = []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// DefaultSkillNames returns the built-in skill list, sorted.
func DefaultSkillNames() []string {
	names := make([]string, 0, len(defaultSkillStats))
	for name := range defaultSkillStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultStatForSkill looks a skill up in the built-in table.
func DefaultStatForSkill(skill string) (string, bool) {
	stat, ok := defaultSkillStats[NormalizeName(skill)]
	return stat, ok
}
