package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/nihei9/moka/driver"
	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/grammar/symbol"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source *string
	trace  *bool
	tree   *bool
	json   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>|<module directory path>",
		Short:   "Translate a text stream",
		Example: `  echo 'var x = 1;' | moka parse testdata/variables.moka`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.trace = cmd.Flags().Bool("trace", false, "print shifts and reductions to stderr")
	parseFlags.tree = cmd.Flags().Bool("tree", false, "print the derivation tree instead of the translation")
	parseFlags.json = cmd.Flags().Bool("json", false, "print the derivation tree in JSON format")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				retErr = fmt.Errorf("an unexpected error occurred: %v", v)
			} else {
				retErr = err
			}
			fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
		}
	}()

	lg, err := loadGrammar(args[0])
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	toks, err := lg.lexSpec.NewTokenStream(src)
	if err != nil {
		return err
	}

	var acts actionSets
	if *parseFlags.trace {
		acts = append(acts, driver.NewTraceActionSet(os.Stderr))
	}
	var treeAct *driver.SyntaxTreeActionSet
	if *parseFlags.tree || *parseFlags.json {
		treeAct = driver.NewSyntaxTreeActionSet()
		acts = append(acts, treeAct)
	}

	out, err := lg.parser.ParseWithActions(toks, acts)
	if err != nil {
		return err
	}

	switch {
	case *parseFlags.json:
		b, err := json.Marshal(treeAct.Tree())
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
	case *parseFlags.tree:
		driver.PrintTree(os.Stdout, treeAct.Tree())
	default:
		fmt.Fprintln(os.Stdout, out)
	}

	return nil
}

// actionSets passes every parser action to each of its elements in order.
type actionSets []driver.SemanticActionSet

func (s actionSets) Shift(tok *symbol.Token) {
	for _, a := range s {
		a.Shift(tok)
	}
}

func (s actionSets) Reduce(rule *grammar.Rule, pos symbol.Position) {
	for _, a := range s {
		a.Reduce(rule, pos)
	}
}

func (s actionSets) Accept() {
	for _, a := range s {
		a.Accept()
	}
}

func (s actionSets) Reject(err error) {
	for _, a := range s {
		a.Reject(err)
	}
}
