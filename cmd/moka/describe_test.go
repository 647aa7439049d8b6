package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestWriteDescription(t *testing.T) {
	tests := []struct {
		caption  string
		path     string
		contents []string
	}{
		{
			caption: "a grammar file",
			path:    "../../testdata/variables.moka",
			contents: []string{
				"# Start Symbol\n\nS_STATEMENT\n",
				"T_VAR_DEC \"var\"\n",
				"T_NUMBER /[0-9]+/\n",
				"(skip)\n",
				"   1 S_STATEMENT → S_VAR_ASSIGN T_EOL (S_STATEMENT_VAR_ASSIGN)\n",
				"   3 S_VAR_DEC → T_VAR_DEC T_IDENT\n",
				"No production is shadowed.",
			},
		},
		{
			caption: "a module",
			path:    "../../testdata/variables",
			contents: []string{
				"# Module\n\nvariables 1.0.0\n",
				"statements.moka\n",
				"data.moka\n",
				"tokens.moka\n",
				"# Start Symbol\n\nS_STATEMENT\n",
				"   6 S_DATA → T_IDENT\n",
			},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			lg, err := loadGrammar(tt.path)
			if err != nil {
				t.Fatal(err)
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
			var b strings.Builder
			err = writeDescription(&b, desc)
			if err != nil {
				t.Fatal(err)
			}
			for _, c := range tt.contents {
				if !strings.Contains(b.String(), c) {
					t.Fatalf("a description must contain %q; got:\n%v", c, b.String())
				}
			}
		})
	}
}

func TestLoadGrammar_Error(t *testing.T) {
	_, err := loadGrammar("../../testdata/missing.moka")
	if err == nil {
		t.Fatal("a missing grammar must be an error")
	}
}
