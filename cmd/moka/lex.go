package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nihei9/moka/driver"
	"github.com/spf13/cobra"
)

var lexFlags = struct {
	source *string
	json   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lex <grammar file path>|<module directory path>",
		Short:   "Print the tokens a text stream consists of",
		Example: `  echo 'var x = 1;' | moka lex testdata/variables.moka`,
		Args:    cobra.ExactArgs(1),
		RunE:    runLex,
	}
	lexFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	lexFlags.json = cmd.Flags().Bool("json", false, "print each token in JSON format")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	lg, err := loadGrammar(args[0])
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if *lexFlags.source != "" {
		f, err := os.Open(*lexFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *lexFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	toks, err := lg.lexSpec.NewTokenStream(src)
	if err != nil {
		return err
	}
	return writeTokens(os.Stdout, toks, *lexFlags.json)
}

type tokenJSON struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Lexeme string `json:"lexeme"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	EOF    bool   `json:"eof,omitempty"`
}

// writeTokens writes every token of `toks` up to and including the end of input, one token per line.
func writeTokens(w io.Writer, toks driver.TokenStream, asJSON bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for {
		tok, err := toks.Next()
		if err != nil {
			return err
		}
		if asJSON {
			err := enc.Encode(&tokenJSON{
				Index:  tok.Index,
				Kind:   tok.Kind,
				Lexeme: tok.Lexeme,
				Row:    tok.Pos.Row,
				Col:    tok.Pos.Col,
				EOF:    tok.EOF,
			})
			if err != nil {
				return err
			}
		} else {
			fmt.Fprintf(w, "%v: %v\n", tok.Pos, tok)
		}
		if tok.EOF {
			return nil
		}
	}
}
