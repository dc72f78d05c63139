package schema

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
)

// MinimalSelection is used for cycles and for types that cannot be introspected.
const MinimalSelection = "_id\n__typename"

// MaxDepth is the deepest expansion a caller may request.
const MaxDepth = 3

// fulltextField is only selected outside ExpandAuto.
const fulltextField = "_fulltext"

// ExpansionMode controls which fields auto-expansion selects.
type ExpansionMode string

const (
	ExpandNone             ExpansionMode = ""
	ExpandAuto             ExpansionMode = "auto"
	ExpandAutoWithFulltext ExpansionMode = "auto_with_fulltext"
	ExpandFull             ExpansionMode = "full"
)

// ParseExpansionMode accepts the three known modes.
func ParseExpansionMode(s string) (ExpansionMode, bool) {
	switch m := ExpansionMode(s); m {
	case ExpandAuto, ExpandAutoWithFulltext, ExpandFull:
		return m, true
	}
	return ExpandNone, false
}

// Path is the set of type names on the current expansion branch.
type Path map[string]struct{}

func (p Path) has(name string) bool {
	_, ok := p[name]
	return ok
}

// with returns a copy of p extended by name. p itself is never modified, so
// siblings only share their ancestors.
func (p Path) with(name string) Path {
	next := make(Path, len(p)+1)
	for k := range p {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return next
}

// Synthesizer expands a type into a selection set from its introspected shape.
type Synthesizer struct {
	shapes ShapeSource
}

// NewSynthesizer creates a Synthesizer reading shapes from src.
func NewSynthesizer(src ShapeSource) *Synthesizer {
	return &Synthesizer{shapes: src}
}

func synthLog() *zap.Logger {
	return logger.Named("core.schema.synth")
}

// ExpandFields expands typeName from an empty path.
func (s *Synthesizer) ExpandFields(ctx context.Context, typeName string, depth int, mode ExpansionMode) string {
	return s.Expand(ctx, typeName, depth, nil, mode)
}

// Expand returns the newline-separated selection for typeName. Object fields
// are expanded while depth > 0. A type already on visited, or one that cannot
// be introspected, yields MinimalSelection. depth must be within [0, MaxDepth].
func (s *Synthesizer) Expand(ctx context.Context, typeName string, depth int, visited Path, mode ExpansionMode) string {
	if visited.has(typeName) {
		synthLog().Debug("Circular reference, using minimal fields", zap.String("type", typeName))
		return MinimalSelection
	}

	shape, ok := s.shapes.GetTypeShape(ctx, typeName)
	if !ok {
		return MinimalSelection
	}

	skipFulltext := mode == ExpandAuto
	fields := make([]string, 0, len(shape.Scalars)+len(shape.Objects))

	for _, f := range shape.Scalars {
		if skipFulltext && f.Name == fulltextField {
			continue
		}
		fields = append(fields, f.Name)
	}

	for _, f := range shape.Lists {
		switch {
		case f.ElemKind.IsLeaf():
			if skipFulltext && f.Name == fulltextField {
				continue
			}
			fields = append(fields, f.Name)
		case f.ElemKind.IsPolymorphic():
			synthLog().Debug("Skipping polymorphic list, requires fragments",
				zap.String("type", typeName), zap.String("field", f.Name))
		}
	}

	if depth > 0 {
		branch := visited.with(typeName)
		for _, f := range shape.Objects {
			if f.TargetType == "" {
				continue
			}
			nested := s.Expand(ctx, f.TargetType, depth-1, branch, mode)
			if strings.TrimSpace(nested) == "" {
				synthLog().Debug("Skipping object field with no selectable fields",
					zap.String("field", f.Name), zap.String("target", f.TargetType))
				continue
			}
			fields = append(fields, block(f.Name, nested))
		}
	}

	if len(shape.Polymorphic) > 0 {
		synthLog().Debug("Interface/union fields require explicit fragments",
			zap.String("type", typeName), zap.Int("count", len(shape.Polymorphic)))
	}

	return strings.Join(fields, "\n")
}

// block renders name { selection } with the selection indented two spaces.
func block(name, selection string) string {
	return name + " {\n  " + strings.ReplaceAll(selection, "\n", "\n  ") + "\n}"
}
