/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/suderio/draconic-rules/internal/rules"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Browse the loaded rule registry",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every loaded rule",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		typ, _ := cmd.Flags().GetString("type")
		list := s.reg.All()
		if typ != "" {
			list = s.reg.RulesByType(rules.RuleType(rules.NormalizeName(typ)))
		}
		for _, r := range list {
			fmt.Printf("%-28s %-10s %s\n", r.Name, r.Type, r.RussianName)
		}
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a rule with its dependencies and formulas",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		r, ok := s.reg.Rule(args[0])
		if !ok {
			fmt.Printf("Error: rule %s not found\n", args[0])
			os.Exit(1)
		}
		fmt.Println(renderRule(r, s.reg.DependentNames(r.Name)))
	},
}

var rulesDepsCmd = &cobra.Command{
	Use:   "deps [name]",
	Short: "List the rules a rule depends on",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		for _, name := range s.reg.DependencyNames(args[0]) {
			fmt.Println(name)
		}
	},
}

var rulesDependentsCmd = &cobra.Command{
	Use:   "dependents [name]",
	Short: "List the rules that depend on or are influenced by a rule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		var types []rules.RuleType
		typeNames, _ := cmd.Flags().GetStringSlice("type")
		for _, t := range typeNames {
			types = append(types, rules.RuleType(rules.NormalizeName(t)))
		}
		for _, name := range s.reg.DependentNames(args[0], types...) {
			fmt.Println(name)
		}
	},
}

var rulesSkillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List skills with the ability each one is based on",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		for _, skill := range s.reg.SkillNames() {
			stat, _ := s.reg.PrimaryStatForSkill(skill)
			fmt.Printf("%-20s %s\n", skill, stat)
		}
	},
}

func renderRule(r *rules.Rule, dependents []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render("Type:"), r.Type)
	if r.RussianName != "" {
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render("Russian name:"), r.RussianName)
	}
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render("Depends on:"), joinOrDash(r.Dependencies))
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render("Influences:"), joinOrDash(r.Influence))
	fmt.Fprintf(&b, "%s %s", headerStyle.Render("Dependents:"), joinOrDash(dependents))

	if len(r.Formulas) > 0 {
		b.WriteString("\n\n" + headerStyle.Render("Formulas:"))
		for _, f := range r.Formulas {
			fmt.Fprintf(&b, "\n  %s", f.Formula)
			if !f.Unconditional() {
				b.WriteString(infoStyle.Render("  when " + conditionString(f.Conditions)))
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(r.Name),
		sectionStyle.Render(b.String()),
		infoStyle.Render("source: "+r.Source),
	)
}

func conditionString(conds map[string]string) string {
	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + conds[k]
	}
	return strings.Join(parts, ", ")
}

func joinOrDash(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesShowCmd, rulesDepsCmd, rulesDependentsCmd, rulesSkillsCmd)

	rulesListCmd.Flags().StringP("type", "t", "", "Only list rules of this type (stat, skill, derived, base, context)")
	rulesDependentsCmd.Flags().StringSliceP("type", "t", nil, "Only list dependents of these types (repeatable)")
}
