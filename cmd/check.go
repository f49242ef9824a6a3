/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/suderio/draconic-rules/internal/engine"
	"github.com/suderio/draconic-rules/internal/scenario"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Run rule scenario files",
	Long: `Runs every scenario in the given YAML files against the loaded rules.
A scenario evaluates a rule, a literal formula or a whole character sheet
and checks the result with a CEL expression, for example:

  name: medium armor caps dexterity
  rule: armor_class
  filters: {armor_type: medium}
  context: {ARMOR_BONUS: 14, DEX_MOD: 3}
  expect: value == 16.0 && display == "(+14) + min((+3), 2)"

Exits with status 1 when any scenario fails.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession()
		defer s.close()

		runner, err := scenario.NewRunner(s.reg, s.ev, s.loader)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		var list []scenario.Scenario
		for _, path := range args {
			scenarios, err := scenario.LoadFile(path)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			list = append(list, scenarios...)
		}

		bar := progressbar.Default(int64(len(list)), "Checking scenarios")
		var failed []scenario.Outcome
		for _, sc := range list {
			out := runner.Run(sc)
			if out.Err != nil || !out.Passed {
				failed = append(failed, out)
			}
			bar.Add(1)
		}
		fmt.Println()

		for _, out := range failed {
			fmt.Println(failStyle.Render("FAIL " + out.Name))
			if out.Err != nil {
				fmt.Printf("  %s: %v\n", out.Source, out.Err)
				continue
			}
			fmt.Printf("  %s: got %s = %s\n", out.Source, out.Display, engine.FormatSignedValue(out.Value))
		}

		if len(failed) > 0 {
			fmt.Println(failStyle.Render(fmt.Sprintf("%d of %d scenarios failed", len(failed), len(list))))
			os.Exit(1)
		}
		fmt.Println(passStyle.Render(fmt.Sprintf("%d scenarios passed", len(list))))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
