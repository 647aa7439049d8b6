// Package module reads a module: a directory bundling the grammar files of one language with a manifest.
//
//	variables/
//	    module.yml
//	    statements.moka
//	    tokens.moka
//
// The grammar files are merged into one grammar. A rule may produce a kind other files produce too, and such
// rules are alternatives of that kind.
package module

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	verr "github.com/nihei9/moka/error"
	"github.com/nihei9/moka/spec"
	"gopkg.in/yaml.v3"
)

const (
	ManifestFileName = "module.yml"
	GrammarFileExt   = ".moka"
)

var (
	ErrNotDirectory    = errors.New("a module must be a directory")
	ErrNoManifest      = errors.New("a module needs " + ManifestFileName)
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrMissingProperty = errors.New("a manifest lacks required properties")
	ErrNoGrammarFile   = errors.New("a module needs at least one grammar file")
	ErrNoCoreFile      = errors.New("the core grammar file is not found")
)

// Manifest is the content of module.yml.
//
//	name: variables
//	version: 1.0.0
//	core: statements
type Manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Core is the name of the grammar file loaded first, with or without the extension. Its rules are
	// registered before the rules of the other files, so its first rule decides the default start kind.
	Core string `yaml:"core"`
}

// ReadManifest decodes a manifest and checks that it has all of the required properties.
func ReadManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(m)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Version == "" {
		missing = append(missing, "version")
	}
	if m.Core == "" {
		missing = append(missing, "core")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingProperty, strings.Join(missing, ", "))
	}
	return m, nil
}

type Module struct {
	Manifest *Manifest
	Dir      string

	// GrammarFiles are the paths of the grammar files in load order: the core file first, and then the
	// others in lexical order.
	GrammarFiles []string
}

// Read reads the manifest of a module and lists its grammar files.
func Read(dir string) (*Module, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("module %v: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("module %v: %w", dir, ErrNotDirectory)
	}

	m, err := readManifestFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("module %v: %w", dir, err)
	}

	es, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("module %v: %w", dir, err)
	}
	core := m.Core
	if filepath.Ext(core) != GrammarFileExt {
		core += GrammarFileExt
	}
	var corePath string
	var others []string
	for _, e := range es {
		if e.IsDir() || filepath.Ext(e.Name()) != GrammarFileExt {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Name() == core {
			corePath = path
			continue
		}
		others = append(others, path)
	}
	if corePath == "" {
		if len(others) == 0 {
			return nil, fmt.Errorf("module %v: %w", m.Name, ErrNoGrammarFile)
		}
		return nil, fmt.Errorf("module %v: %w: %v", m.Name, ErrNoCoreFile, core)
	}

	return &Module{
		Manifest:     m,
		Dir:          dir,
		GrammarFiles: append([]string{corePath}, others...),
	}, nil
}

func readManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoManifest
		}
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}

// Grammar parses every grammar file of the module and checks them as one grammar. Syntax errors of all files
// are reported together.
func (m *Module) Grammar() (*spec.Grammar, error) {
	var roots []*spec.RootNode
	var errs verr.SpecErrors
	for _, path := range m.GrammarFiles {
		root, err := spec.ParseFile(path)
		if err != nil {
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				return nil, err
			}
			errs = append(errs, specErrs...)
			continue
		}
		roots = append(roots, root)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return spec.NewGrammar(spec.Merge(roots...))
}
