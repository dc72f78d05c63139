// Package fragments holds the static fragment catalog used for polymorphic
// content fields.
package fragments

import (
	"embed"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
)

//go:embed catalog/*.graphql
var catalogFS embed.FS

// fragmentPattern captures the type condition and the body of a fragment.
var fragmentPattern = regexp.MustCompile(`^fragment \w+ on (\w+) \{([\s\S]*)\}$`)

// Definition is one registered fragment.
type Definition struct {
	// Name is the registry key, which is also the content type it targets.
	Name string
	// TypeName is the type condition of Text. It is empty when Text is not a
	// single well-formed fragment definition.
	TypeName string
	// Body is the selection between the outer braces, verbatim.
	Body string
	Text string
}

// Valid reports whether d can be used in a document.
func (d Definition) Valid() bool {
	return d.TypeName != ""
}

// Registry maps fragment names to their definitions. It is immutable after
// construction.
type Registry struct {
	defs  map[string]Definition
	names []string
}

func registryLog() *zap.Logger {
	return logger.Named("core.fragments")
}

// NewRegistry builds a registry from name -> fragment text.
func NewRegistry(texts map[string]string) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(texts))}
	for name, text := range texts {
		r.defs[name] = parseDefinition(name, text)
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(loadCatalog())
	})
	return defaultRegistry
}

func loadCatalog() map[string]string {
	entries, err := catalogFS.ReadDir("catalog")
	if err != nil {
		registryLog().Error("Failed to read fragment catalog", zap.Error(err))
		return nil
	}
	texts := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := catalogFS.ReadFile(path.Join("catalog", e.Name()))
		if err != nil {
			registryLog().Error("Failed to read fragment", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		texts[strings.TrimSuffix(e.Name(), ".graphql")] = strings.TrimSpace(string(data))
	}
	return texts
}

// parseDefinition checks that text is exactly one fragment definition and
// extracts its type condition and body. Anything else yields a Definition
// without TypeName.
func parseDefinition(name, text string) Definition {
	def := Definition{Name: name, Text: text}
	text = strings.TrimSpace(text)

	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: text})
	if err != nil {
		registryLog().Warn("Fragment does not parse", zap.String("fragment", name), zap.Error(err))
		return def
	}
	if len(doc.Fragments) != 1 || len(doc.Operations) != 0 {
		registryLog().Warn("Expected exactly one fragment definition",
			zap.String("fragment", name),
			zap.Int("fragments", len(doc.Fragments)),
			zap.Int("operations", len(doc.Operations)))
		return def
	}

	m := fragmentPattern.FindStringSubmatch(text)
	if m == nil || m[1] != doc.Fragments[0].TypeCondition {
		registryLog().Warn("Fragment is not in the \"fragment <name> on <Type> { <body> }\" form", zap.String("fragment", name))
		return def
	}
	def.TypeName = m[1]
	def.Body = m[2]
	return def
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Resolve returns the definitions for names in request order. Unknown,
// repeated and malformed names are dropped.
func (r *Registry) Resolve(names []string) []Definition {
	seen := make(map[string]struct{}, len(names))
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		def, ok := r.defs[name]
		if !ok {
			registryLog().Debug("Ignoring unknown fragment", zap.String("fragment", name))
			continue
		}
		if !def.Valid() {
			registryLog().Warn("Skipping malformed fragment", zap.String("fragment", name))
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

// CompileInline rewrites each resolved fragment into an inline
// "... on Type {body}" block. Fragments whose text does not have the
// "fragment <name> on <Type> { <body> }" form contribute nothing.
func (r *Registry) CompileInline(names []string) string {
	var blocks []string
	for _, def := range r.Resolve(names) {
		blocks = append(blocks, "... on "+def.TypeName+" {"+def.Body+"}")
	}
	return strings.Join(blocks, "\n")
}

// Definitions returns the full text of each resolved fragment, in order.
// Malformed fragments contribute nothing, as in CompileInline.
func (r *Registry) Definitions(names []string) []string {
	defs := r.Resolve(names)
	texts := make([]string, 0, len(defs))
	for _, d := range defs {
		texts = append(texts, d.Text)
	}
	return texts
}
