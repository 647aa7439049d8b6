package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

// traceKeys are the tracers of the packages moka consists of.
var traceKeys = []string{
	"moka.grammar",
	"moka.driver",
	"moka.lexer",
}

var rootFlags = struct {
	logLevel *string
}{}

var rootCmd = &cobra.Command{
	Use:   "moka",
	Short: "Reduce token streams with pattern rules",
	Long: `moka provides four features:
- Translates a text stream according to the rules of a grammar file.
- Prints the tokens a grammar file splits a text stream into.
- Describes the tokens and the productions a grammar file defines.
- Tests a grammar file against test case files.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setTraceLevel(*rootFlags.logLevel)
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.logLevel = rootCmd.PersistentFlags().String("log-level", "error", "trace level: error, info, or debug")
}

// setTraceLevel sets the level of every tracer moka uses. Traces are written to stderr.
func setTraceLevel(level string) error {
	var l tracing.TraceLevel
	switch strings.ToLower(level) {
	case "error":
		l = tracing.LevelError
	case "info":
		l = tracing.LevelInfo
	case "debug":
		l = tracing.LevelDebug
	default:
		return fmt.Errorf("invalid log level: %v (error, info, or debug is available)", level)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
	return nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
