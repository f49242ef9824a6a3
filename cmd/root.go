/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/suderio/draconic-rules/internal/data"
	"github.com/suderio/draconic-rules/internal/engine"
	"github.com/suderio/draconic-rules/internal/rules"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "draconic-rules",
	Short: "Inspect and evaluate character rule data",
	Long: `draconic-rules loads rule definitions (stats, skills, derived values)
from YAML and JSON documents and evaluates their calculation formulas
against a character context. Use it to browse the rule registry, try a
formula, render a character sheet or check rule scenarios.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.draconic-rules.yaml)")
	rootCmd.PersistentFlags().StringSliceP("data_dir", "d", nil, "Data directory holding rules/ and characters/ (repeatable, later directories override earlier ones)")
	rootCmd.PersistentFlags().Bool("builtin_rules", true, "Load the built-in rule set before the data directories")
	rootCmd.PersistentFlags().String("log_level", "warn", "Diagnostic log level (debug, info, warn, error)")

	viper.SetDefault("data_dirs", []string{"./data"})
	viper.SetDefault("builtin_rules", true)
	viper.SetDefault("log_level", "warn")

	cobra.CheckErr(viper.BindPFlag("data_dirs", rootCmd.PersistentFlags().Lookup("data_dir")))
	cobra.CheckErr(viper.BindPFlag("builtin_rules", rootCmd.PersistentFlags().Lookup("builtin_rules")))
	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".draconic-rules")
	}

	viper.SetEnvPrefix("DRACONIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

// newLogger builds the console logger used for load and evaluation
// diagnostics. Diagnostics go to stderr so command output stays clean.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	return cfg.Build()
}

// session bundles what every command needs: the logger, the data loader,
// the loaded rule registry and a formula evaluator.
type session struct {
	log    *zap.Logger
	loader *data.Loader
	reg    *rules.Registry
	ev     *engine.Evaluator
}

func newSession() (*session, error) {
	log, err := newLogger(viper.GetString("log_level"))
	if err != nil {
		return nil, err
	}

	loader := data.NewLoader(viper.GetStringSlice("data_dirs"),
		data.WithEmbedded(viper.GetBool("builtin_rules")),
		data.WithLogger(log))

	recs, err := loader.LoadRules()
	if err != nil {
		return nil, err
	}
	reg := rules.Load(recs, rules.WithLogger(log))
	log.Debug("rule registry loaded", zap.Int("rules", reg.Len()))

	return &session{
		log:    log,
		loader: loader,
		reg:    reg,
		ev:     engine.NewEvaluator(engine.WithLogger(log)),
	}, nil
}

// mustSession is the Run-side wrapper around newSession.
func mustSession() *session {
	s, err := newSession()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return s
}

func (s *session) close() {
	_ = s.log.Sync()
}
