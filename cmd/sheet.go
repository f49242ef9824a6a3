/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/suderio/draconic-rules/internal/engine"
	"github.com/suderio/draconic-rules/internal/sheet"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sheetCmd represents the sheet command
var sheetCmd = &cobra.Command{
	Use:   "sheet [character]",
	Short: "Compute and print a character sheet",
	Long: `Loads a character document (a path, or a name looked up under
characters/ in the data directories) and derives abilities, skills,
saving throws, armor class, initiative and passive perception from the
loaded rules. Values computed without rule data are marked with *.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		c, err := s.loader.LoadCharacter(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		showFormulas, _ := cmd.Flags().GetBool("formulas")
		sh := sheet.NewCalculator(s.reg, s.ev, sheet.WithLogger(s.log)).Compute(c)
		fmt.Println(renderSheet(sh, showFormulas))
	},
}

func renderSheet(sh *sheet.Sheet, showFormulas bool) string {
	title := titleStyle.Render(fmt.Sprintf("%s (level %d)", sh.Name, sh.Level))

	var abilities strings.Builder
	abilities.WriteString(headerStyle.Render("Abilities"))
	for _, e := range sh.Abilities {
		fmt.Fprintf(&abilities, "\n%-14s %2d  %s", e.Name, e.Score, renderValue(e, showFormulas))
	}

	var skills strings.Builder
	skills.WriteString(headerStyle.Render("Skills"))
	for _, e := range sh.Skills {
		fmt.Fprintf(&skills, "\n%-18s %-4s %s", e.Name, abbrev(e.Stat), renderValue(e, showFormulas))
	}

	var saves strings.Builder
	saves.WriteString(headerStyle.Render("Saving throws"))
	for _, e := range sh.SavingThrows {
		fmt.Fprintf(&saves, "\n%-14s %s", e.Stat, renderValue(e, showFormulas))
	}

	var combat strings.Builder
	combat.WriteString(headerStyle.Render("Combat"))
	for _, e := range []sheet.Entry{sh.ProficiencyBonus, sh.ArmorClass, sh.Initiative, sh.PassivePerception} {
		fmt.Fprintf(&combat, "\n%-18s %s", e.Name, renderValue(e, showFormulas))
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render(abilities.String()),
		sectionStyle.Render(saves.String()),
		sectionStyle.Render(combat.String()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, sectionStyle.Render(skills.String()))

	return lipgloss.JoinVertical(lipgloss.Left, title, body,
		infoStyle.Render("* computed without rule data"))
}

func renderValue(e sheet.Entry, showFormulas bool) string {
	v := fmt.Sprintf("%3s", engine.FormatSignedValue(e.Value))
	if e.Proficiency != "" {
		v += " " + infoStyle.Render("("+e.Proficiency+")")
	}
	if e.Fallback {
		v += fallbackStyle.Render(" *")
	}
	if showFormulas && e.Display != "" {
		v += "\n    " + infoStyle.Render(e.Formula+" = "+e.Display)
	}
	return v
}

func abbrev(stat string) string {
	if len(stat) < 3 {
		return stat
	}
	return strings.ToUpper(stat[:3])
}

func init() {
	rootCmd.AddCommand(sheetCmd)
	sheetCmd.Flags().Bool("formulas", false, "Show the selected formula and its audit display under each value")
}
