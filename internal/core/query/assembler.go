// Package query assembles GraphQL documents for REST content requests.
package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/fragments"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

// Shape selects the envelope the auto-expanded selection is wrapped in.
type Shape int

const (
	// ShapeItems wraps the selection as items { ... } total cursor.
	ShapeItems Shape = iota
	// ShapeItem wraps the selection as item { ... }.
	ShapeItem
)

// Spec is the assembled intent of one content request.
type Spec struct {
	ContentType string
	Variables   Variables
	Fields      []string
	Fragments   []string
	Expand      schema.ExpansionMode
	Depth       int
	Shape       Shape
}

// FieldExpander synthesizes a selection for a type.
type FieldExpander interface {
	ExpandFields(ctx context.Context, typeName string, depth int, mode schema.ExpansionMode) string
}

// Assembler composes documents from variables, a selection strategy and
// fragment definitions. It holds no state of its own.
type Assembler struct {
	fields    FieldExpander
	fragments *fragments.Registry
}

// NewAssembler creates an Assembler. A nil registry means the embedded catalog.
func NewAssembler(fields FieldExpander, registry *fragments.Registry) *Assembler {
	if registry == nil {
		registry = fragments.Default()
	}
	return &Assembler{fields: fields, fragments: registry}
}

func assembleLog() *zap.Logger {
	return logger.Named("core.query")
}

// Assemble returns the document for spec. Strategy, in priority order:
// explicit fields, auto-expansion (plus inline fragments), fragments on the
// minimal envelope, the minimal envelope.
func (a *Assembler) Assemble(ctx context.Context, spec Spec) string {
	header, args := declare(spec.ContentType, spec.Variables)

	var selection string
	var withDefinitions bool
	switch {
	case len(spec.Fields) > 0:
		selection = strings.Join(dedupe(spec.Fields), "\n")
	case spec.Expand != schema.ExpandNone:
		selection = a.expanded(ctx, spec)
		withDefinitions = true
	case len(spec.Fragments) > 0:
		selection = a.fragmentEnvelope(spec.Fragments)
		withDefinitions = true
	default:
		selection = block("items", schema.MinimalSelection) + "\ntotal\ncursor"
	}

	doc := block(header, block(spec.ContentType+args, selection))
	if withDefinitions {
		if defs := a.fragments.Definitions(spec.Fragments); len(defs) > 0 {
			doc = strings.Join(defs, "\n\n") + "\n\n" + doc
		}
	}

	assembleLog().Debug("Assembled query", zap.String("contentType", spec.ContentType), zap.String("query", doc))
	return doc
}

func (a *Assembler) expanded(ctx context.Context, spec Spec) string {
	depth := spec.Depth
	if depth < 0 || depth > schema.MaxDepth {
		assembleLog().Warn("Depth out of range, not expanding object fields", zap.Int("depth", depth))
		depth = 0
	}

	sel := a.fields.ExpandFields(ctx, spec.ContentType, depth, spec.Expand)
	if strings.TrimSpace(sel) == "" {
		sel = schema.MinimalSelection
	}
	if inline := a.fragments.CompileInline(spec.Fragments); inline != "" {
		sel += "\n" + inline
	}

	if spec.Shape == ShapeItem {
		return block("item", sel)
	}
	return block("items", sel) + "\ntotal\ncursor"
}

func (a *Assembler) fragmentEnvelope(names []string) string {
	sel := schema.MinimalSelection
	if inline := a.fragments.CompileInline(names); inline != "" {
		sel += "\n" + inline
	}
	return block("items", sel) + "\n" + block("item", sel) + "\ntotal\ncursor"
}

// declare builds the operation header and the matching argument list.
func declare(contentType string, vars Variables) (header, args string) {
	var defs, binds []string
	for _, d := range vocabulary {
		if _, ok := vars[d.name]; !ok {
			continue
		}
		defs = append(defs, "$"+d.name+": "+d.typeFor(contentType))
		binds = append(binds, d.name+": $"+d.name)
	}

	header = "query " + contentType + "Query"
	if len(defs) > 0 {
		header += "(" + strings.Join(defs, ", ") + ")"
		args = "(" + strings.Join(binds, ", ") + ")"
	}
	return header, args
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// block renders name { selection } with the selection indented two spaces.
func block(name, selection string) string {
	return name + " " + braces(selection)
}

func braces(selection string) string {
	return "{\n  " + strings.ReplaceAll(selection, "\n", "\n  ") + "\n}"
}
