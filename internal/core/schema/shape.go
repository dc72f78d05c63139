// Package schema introspects upstream content types and synthesizes field
// selections from their shapes.
package schema

import "time"

// FieldKind is the category of a field after unwrapping NON_NULL.
type FieldKind string

const (
	KindScalar    FieldKind = "SCALAR"
	KindEnum      FieldKind = "ENUM"
	KindObject    FieldKind = "OBJECT"
	KindInterface FieldKind = "INTERFACE"
	KindUnion     FieldKind = "UNION"
	KindList      FieldKind = "LIST"
)

// IsLeaf reports whether values of kind have no sub-selection.
func (k FieldKind) IsLeaf() bool {
	return k == KindScalar || k == KindEnum
}

// IsPolymorphic reports whether kind needs type conditions to select from.
func (k FieldKind) IsPolymorphic() bool {
	return k == KindInterface || k == KindUnion
}

// FieldDescriptor is one field of a schema type.
type FieldDescriptor struct {
	Name string
	Kind FieldKind
	// TargetType is the named type after unwrapping; empty for lists.
	TargetType string
	// ElemKind and ElemType describe list elements.
	ElemKind FieldKind
	ElemType string
}

// TypeShape is the categorized field set of one named type.
type TypeShape struct {
	Name        string
	Scalars     []FieldDescriptor
	Objects     []FieldDescriptor
	Polymorphic []FieldDescriptor
	Lists       []FieldDescriptor
	FetchedAt   time.Time
}

// typeRef mirrors an introspection __Type reference with its ofType chain.
type typeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *typeRef `json:"ofType"`
}

func (t *typeRef) name() string {
	if t == nil || t.Name == nil {
		return ""
	}
	return *t.Name
}

type introspectedField struct {
	Name string  `json:"name"`
	Type typeRef `json:"type"`
}

type introspectedType struct {
	Name   string              `json:"name"`
	Kind   string              `json:"kind"`
	Fields []introspectedField `json:"fields"`
}

// describe classifies a field by stripping one NON_NULL wrapper, and for lists
// the LIST wrapper plus one NON_NULL around the element. Deeper nesting such
// as [[String]] is classified at the deepest level the query returned.
func describe(f introspectedField) (FieldDescriptor, bool) {
	t := &f.Type
	if t.Kind == "NON_NULL" {
		if t.OfType == nil {
			return FieldDescriptor{}, false
		}
		t = t.OfType
	}

	d := FieldDescriptor{Name: f.Name, Kind: FieldKind(t.Kind)}
	if d.Kind != KindList {
		d.TargetType = t.name()
		return d, true
	}

	elem := t.OfType
	if elem != nil && elem.Kind == "NON_NULL" && elem.OfType != nil {
		elem = elem.OfType
	}
	if elem != nil {
		d.ElemKind = FieldKind(elem.Kind)
		d.ElemType = elem.name()
	}
	return d, true
}

// categorize builds a complete shape from an introspected type.
func categorize(t *introspectedType, fetchedAt time.Time) *TypeShape {
	shape := &TypeShape{Name: t.Name, FetchedAt: fetchedAt}
	for _, f := range t.Fields {
		d, ok := describe(f)
		if !ok {
			continue
		}
		switch {
		case d.Kind == KindList:
			shape.Lists = append(shape.Lists, d)
		case d.Kind.IsLeaf():
			shape.Scalars = append(shape.Scalars, d)
		case d.Kind == KindObject:
			shape.Objects = append(shape.Objects, d)
		case d.Kind.IsPolymorphic():
			shape.Polymorphic = append(shape.Polymorphic, d)
		}
	}
	return shape
}
