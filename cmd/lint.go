/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/suderio/draconic-rules/internal/engine"

	"github.com/spf13/cobra"
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report problems in the loaded rule data",
	Long: `Loads every rule document and reports duplicate rule names, dependencies
and influences that name unknown rules, rules with more than one
unconditional formula and formulas that do not parse. Exits with status 1
when any issue is found.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		issues := s.reg.Lint(engine.Validate)
		for _, issue := range issues {
			fmt.Println(issue.String())
		}
		if len(issues) > 0 {
			fmt.Println(failStyle.Render(fmt.Sprintf("%d issue(s) in %d rules", len(issues), s.reg.Len())))
			os.Exit(1)
		}
		fmt.Println(passStyle.Render(fmt.Sprintf("%d rules, no issues", s.reg.Len())))
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
