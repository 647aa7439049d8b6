package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/moka/driver"
	verr "github.com/nihei9/moka/error"
	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/lexer"
	"github.com/nihei9/moka/module"
	"github.com/nihei9/moka/spec"
)

// loadedGrammar is a grammar file or a module ready to parse sources.
type loadedGrammar struct {
	gram    *spec.Grammar
	reg     *grammar.Registry[string]
	lexSpec *lexer.Spec
	parser  *driver.Parser[string]

	// mod is nil when the grammar comes from a single file.
	mod *module.Module
}

// loadGrammar loads a grammar file, or a module when `path` is a directory.
func loadGrammar(path string) (lg *loadedGrammar, retErr error) {
	defer func() {
		var specErrs verr.SpecErrors
		if retErr != nil && errors.As(retErr, &specErrs) {
			for _, err := range specErrs {
				if err.FilePath == "" {
					err.FilePath = path
					err.SourceName = path
				}
			}
		}
	}()

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar %s: %w", path, err)
	}

	var gram *spec.Grammar
	var mod *module.Module
	if fi.IsDir() {
		mod, err = module.Read(path)
		if err != nil {
			return nil, err
		}
		gram, err = mod.Grammar()
		if err != nil {
			return nil, err
		}
	} else {
		root, err := spec.ParseFile(path)
		if err != nil {
			return nil, err
		}
		gram, err = spec.NewGrammar(root)
		if err != nil {
			return nil, err
		}
	}

	reg, err := gram.Registry()
	if err != nil {
		return nil, err
	}
	lexSpec, err := gram.LexSpec()
	if err != nil {
		return nil, err
	}
	p, err := driver.NewParser(reg, driver.Lexeme, driver.StartSymbol(gram.Start()))
	if err != nil {
		return nil, err
	}

	return &loadedGrammar{
		gram:    gram,
		reg:     reg,
		lexSpec: lexSpec,
		parser:  p,
		mod:     mod,
	}, nil
}
