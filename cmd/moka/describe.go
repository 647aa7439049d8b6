package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/lexer"
	"github.com/nihei9/moka/module"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe <grammar file path>|<module directory path>",
		Short:   "Print the tokens and the productions of a grammar in readable format",
		Example: `  moka describe testdata/variables.moka`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	lg, err := loadGrammar(args[0])
	if err != nil {
		return err
	}

	desc := &description{
		Start:       lg.parser.Start(),
		Tokens:      lg.lexSpec.Entries(),
		Productions: lg.reg.Productions(),
		Shadowed:    lg.reg.Shadowed(),
	}
	if lg.mod != nil {
		desc.Module = lg.mod.Manifest
		desc.Files = lg.mod.GrammarFiles
	}
	return writeDescription(os.Stdout, desc)
}

type description struct {
	// Module and Files are set when a grammar comes from a module.
	Module *module.Manifest
	Files  []string

	Start       string
	Tokens      []*lexer.Entry
	Productions []*grammar.Production[string]
	Shadowed    []*grammar.Shadow
}

const descTemplate = `{{ with .Module -}}
# Module

{{ .Name }} {{ .Version }}

{{ end -}}
{{ if .Files -}}
# Files

{{ range .Files -}}
{{ . }}
{{ end }}
{{ end -}}
# Start Symbol

{{ .Start }}

# Tokens

{{ range .Tokens -}}
{{ printToken . }}
{{ end }}
# Productions

{{ range .Productions -}}
{{ printProduction . }}
{{ end }}
# Shadowed Productions

{{ printShadowSummary . }}
{{ range .Shadowed -}}
{{ printShadow . }}
{{ end -}}
`

func writeDescription(w io.Writer, desc *description) error {
	fns := template.FuncMap{
		"printToken": func(e *lexer.Entry) string {
			var pattern string
			if e.Literal {
				pattern = strconv.Quote(e.Pattern)
			} else {
				pattern = fmt.Sprintf("/%v/", e.Pattern)
			}
			if e.Skip {
				return fmt.Sprintf("%v %v (skip)", e.Kind, pattern)
			}
			return fmt.Sprintf("%v %v", e.Kind, pattern)
		},
		"printProduction": func(prod *grammar.Production[string]) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%4v %v →", prod.Num, prod.LHS)
			for _, kind := range prod.Pattern {
				fmt.Fprintf(&b, " %v", kind)
			}
			if prod.Name != prod.LHS {
				fmt.Fprintf(&b, " (%v)", prod.Name)
			}
			return b.String()
		},
		"printShadowSummary": func(desc *description) string {
			switch len(desc.Shadowed) {
			case 0:
				return "No production is shadowed."
			case 1:
				return "1 production is shadowed and can never be reduced."
			default:
				return fmt.Sprintf("%v productions are shadowed and can never be reduced.", len(desc.Shadowed))
			}
		},
		"printShadow": func(s *grammar.Shadow) string {
			return fmt.Sprintf("%4v %v is shadowed by %v %v", s.Rule.Num, s.Rule, s.By.Num, s.By)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(descTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, desc)
}
