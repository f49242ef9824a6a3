/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/suderio/draconic-rules/internal/engine"
	"github.com/suderio/draconic-rules/internal/sheet"

	"github.com/spf13/cobra"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval [formula]",
	Short: "Evaluate a formula or a rule against a context",
	Long: `Evaluates a literal formula, or the formula a rule selects for the given
filters, and prints the value, the audit display and the tokens used.

  draconic-rules eval "{DEX_MOD} + {PROFICIENCY_BONUS}" --ctx DEX_MOD=3 --ctx PROFICIENCY_BONUS=2
  draconic-rules eval --rule armor_class --filter armor_type=medium --ctx ARMOR_BONUS=14 --ctx DEX_MOD=3
  draconic-rules eval --rule stealth --filter proficiency=expert --character mira-vale`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ruleName, _ := cmd.Flags().GetString("rule")
		filters, _ := cmd.Flags().GetStringToString("filter")
		pairs, _ := cmd.Flags().GetStringToString("ctx")
		character, _ := cmd.Flags().GetString("character")

		if (len(args) == 0) == (ruleName == "") {
			fmt.Println("Error: pass either a formula argument or --rule")
			os.Exit(1)
		}

		s := mustSession()
		defer s.close()

		ctx := map[string]float64{}
		if character != "" {
			c, err := s.loader.LoadCharacter(character)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			ctx = sheet.NewCalculator(s.reg, s.ev, sheet.WithLogger(s.log)).Compute(c).Context
		}
		overrides, err := parseContext(pairs)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for k, v := range overrides {
			ctx[k] = v
		}

		var res engine.Result
		if ruleName != "" {
			var ok bool
			res, ok = s.ev.EvaluateRule(s.reg, ruleName, filters, ctx)
			if !ok {
				fmt.Printf("No formula of %s applies to the given filters\n", ruleName)
				os.Exit(1)
			}
		} else {
			res = s.ev.Evaluate(args[0], ctx)
		}

		fmt.Printf("Formula: %s\n", res.Formula)
		fmt.Printf("Display: %s\n", res.Display)
		fmt.Printf("Tokens:  %s\n", joinOrDash(res.Tokens))
		fmt.Printf("Value:   %s\n", engine.FormatSignedValue(res.Value))
		if res.Err != nil {
			fmt.Println(failStyle.Render(fmt.Sprintf("Error: %v", res.Err)))
			os.Exit(1)
		}
	},
}

// parseContext converts KEY=VALUE pairs into a context with normalized token
// names.
func parseContext(pairs map[string]string) (map[string]float64, error) {
	ctx := make(map[string]float64, len(pairs))
	for k, raw := range pairs {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("context value for %s is not a number: %q", k, raw)
		}
		ctx[k] = v
	}
	return engine.NormalizeContext(ctx), nil
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("rule", "r", "", "Evaluate the formula this rule selects instead of a literal formula")
	evalCmd.Flags().StringToStringP("filter", "f", nil, "Filter used to select the rule formula (key=value, repeatable)")
	evalCmd.Flags().StringToString("ctx", nil, "Context token value (TOKEN=number, repeatable)")
	evalCmd.Flags().StringP("character", "c", "", "Seed the context from a character sheet (path or name under characters/)")
}
