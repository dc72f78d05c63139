package query

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/xzzpig/content-rest/internal/core/fragments"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

// shapeTable serves fixed shapes.
type shapeTable map[string]*schema.TypeShape

func (s shapeTable) GetTypeShape(_ context.Context, name string) (*schema.TypeShape, bool) {
	shape, ok := s[name]
	return shape, ok
}

func scalars(names ...string) []schema.FieldDescriptor {
	out := make([]schema.FieldDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, schema.FieldDescriptor{Name: n, Kind: schema.KindScalar, TargetType: "String"})
	}
	return out
}

func articleShapes() shapeTable {
	return shapeTable{
		"ArticlePage": {
			Name:    "ArticlePage",
			Scalars: scalars("Heading", "Body"),
			Objects: []schema.FieldDescriptor{{Name: "PromoImage", Kind: schema.KindObject, TargetType: "ImageAsset"}},
		},
		"ImageAsset": {Name: "ImageAsset", Scalars: scalars("key", "url")},
	}
}

// failingExecutor simulates an unreachable schema service.
type failingExecutor struct{ calls atomic.Int32 }

func (f *failingExecutor) Execute(context.Context, string, map[string]any, ports.AuthContext) (*ports.Result, error) {
	f.calls.Add(1)
	return nil, errors.New("connect: connection refused")
}

func mustParseDoc(t *testing.T, doc string) *ast.QueryDocument {
	t.Helper()
	parsed, err := parser.ParseQuery(&ast.Source{Input: doc})
	require.NoError(t, err, doc)
	return parsed
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestAssemble_ArticlePageAutoExpandDepthOne(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(articleShapes()), nil)

	doc := a.Assemble(context.Background(), Spec{
		ContentType: "ArticlePage",
		Expand:      schema.ExpandAuto,
		Depth:       1,
	})

	assert.Contains(t, compact(doc), "items { Heading Body PromoImage { key url } } total cursor")
	assert.True(t, strings.HasPrefix(doc, "query ArticlePageQuery {"))
	mustParseDoc(t, doc)
}

func TestAssemble_ByIDFallsBackWhenIntrospectionFails(t *testing.T) {
	exec := &failingExecutor{}
	intro := schema.NewIntrospector(exec)
	a := NewAssembler(schema.NewSynthesizer(intro), nil)

	limit := 1
	p := Params{IDs: []string{"abc"}, Limit: &limit, Expand: schema.ExpandFull, Depth: 2}
	doc := a.Assemble(context.Background(), Spec{
		ContentType: "Missing",
		Variables:   p.Variables(),
		Expand:      p.Expand,
		Depth:       p.Depth,
	})

	assert.Contains(t, compact(doc), "Missing(ids: $ids, limit: $limit) { items { _id __typename } total cursor }")
	assert.Equal(t, int32(1), exec.calls.Load())
	assert.Equal(t, 0, intro.Len())
	mustParseDoc(t, doc)
}

func TestAssemble_FragmentInjection(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(shapeTable{}), nil)

	doc := a.Assemble(context.Background(), Spec{
		ContentType: "LandingPage",
		Fragments:   []string{"Hero", "Card", "Bogus"},
	})

	defs := fragments.Default().Definitions([]string{"Hero", "Card"})
	require.Len(t, defs, 2)
	assert.True(t, strings.HasPrefix(doc, defs[0]+"\n\n"+defs[1]+"\n\n"))
	assert.Equal(t, 2, strings.Count(doc, "... on Hero {"), "inline fragment under items and item")
	assert.Equal(t, 2, strings.Count(doc, "... on Card {"))
	assert.NotContains(t, doc, "Bogus")

	body := compact(doc[strings.Index(doc, "query LandingPageQuery"):])
	assert.True(t, strings.HasPrefix(body, "query LandingPageQuery { LandingPage { items { _id __typename ... on Hero {"))
	assert.Contains(t, body, "item { _id __typename ... on Hero {")
	assert.True(t, strings.HasSuffix(body, "total cursor } }"))

	parsed := mustParseDoc(t, doc)
	assert.Len(t, parsed.Fragments, 2)
	assert.Len(t, parsed.Operations, 1)
}

func TestAssemble_MalformedFragmentContributesNothing(t *testing.T) {
	registry := fragments.NewRegistry(map[string]string{
		"Good":   "fragment GoodFields on Good { a }",
		"Broken": "query { nothing }",
	})
	a := NewAssembler(schema.NewSynthesizer(shapeTable{}), registry)

	doc := a.Assemble(context.Background(), Spec{
		ContentType: "LandingPage",
		Fragments:   []string{"Broken", "Good"},
	})

	assert.True(t, strings.HasPrefix(doc, "fragment GoodFields on Good { a }\n\nquery LandingPageQuery"))
	assert.NotContains(t, doc, "nothing")

	parsed := mustParseDoc(t, doc)
	assert.Len(t, parsed.Operations, 1)
	assert.Len(t, parsed.Fragments, 1)
}

func TestAssemble_ExpandWithFragments(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(articleShapes()), nil)

	doc := a.Assemble(context.Background(), Spec{
		ContentType: "ArticlePage",
		Expand:      schema.ExpandAuto,
		Fragments:   []string{"Hero"},
	})

	c := compact(doc)
	assert.Contains(t, c, "items { Heading Body ... on Hero {")
	assert.NotContains(t, c, "PromoImage")
	assert.NotContains(t, c, "item {")
	assert.True(t, strings.HasPrefix(doc, "fragment HeroFields on Hero"))
	mustParseDoc(t, doc)
}

func TestAssemble_ExplicitFieldsWin(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(articleShapes()), nil)

	doc := a.Assemble(context.Background(), Spec{
		ContentType: "ArticlePage",
		Fields:      []string{"items { _id Heading }", "total", "total"},
		Fragments:   []string{"Hero"},
		Expand:      schema.ExpandAuto,
	})

	assert.Equal(t, "query ArticlePageQuery { ArticlePage { items { _id Heading } total } }", compact(doc))
	mustParseDoc(t, doc)
}

func TestAssemble_DefaultMinimal(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(shapeTable{}), nil)

	doc := a.Assemble(context.Background(), Spec{ContentType: "Hero"})

	assert.Equal(t, "query HeroQuery {\n  Hero {\n    items {\n      _id\n      __typename\n    }\n    total\n    cursor\n  }\n}", doc)
}

func TestAssemble_ItemShape(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(articleShapes()), nil)

	doc := a.Assemble(context.Background(), Spec{ContentType: "ImageAsset", Expand: schema.ExpandAuto, Shape: ShapeItem})

	assert.Equal(t, "query ImageAssetQuery { ImageAsset { item { key url } } }", compact(doc))
}

func TestAssemble_VariableDeclarations(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(shapeTable{}), nil)

	where := Object()
	where.Set("Heading", Object())
	order := Object()
	order.Set("_modified", String("DESC"))
	pinned := true
	limit, skip := 10, 5
	p := Params{
		Limit: &limit, Skip: &skip, Cursor: "c1", Where: where, OrderBy: order,
		IDs: []string{"a"}, Locale: []string{"en"}, Track: "t", UsePinned: &pinned, Variation: String("v"),
	}

	doc := a.Assemble(context.Background(), Spec{ContentType: "ArticlePage", Variables: p.Variables()})

	header := strings.SplitN(doc, "\n", 2)[0]
	assert.Equal(t, "query ArticlePageQuery($cursor: String, $ids: [String], $limit: Int, $locale: [Locales], "+
		"$orderBy: ArticlePageOrderByInput, $skip: Int, $track: String, $usePinned: usePinnedInput, "+
		"$variation: VariationInput, $where: ArticlePageWhereInput) {", header)
	assert.Contains(t, doc, "ArticlePage(cursor: $cursor, ids: $ids, limit: $limit, locale: $locale, orderBy: $orderBy, "+
		"skip: $skip, track: $track, usePinned: $usePinned, variation: $variation, where: $where) {")
	mustParseDoc(t, doc)
}

func TestAssemble_DepthOutOfRangeDoesNotExpandObjects(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(articleShapes()), nil)

	doc := a.Assemble(context.Background(), Spec{ContentType: "ArticlePage", Expand: schema.ExpandAuto, Depth: 7})

	assert.NotContains(t, doc, "PromoImage")
}

func TestAssemblePath(t *testing.T) {
	a := NewAssembler(schema.NewSynthesizer(articleShapes()), nil)
	ctx := context.Background()

	t.Run("default metadata", func(t *testing.T) {
		doc := a.AssemblePath(ctx, PathSpec{URL: "/en/"})
		c := compact(doc)
		assert.True(t, strings.HasPrefix(c, "query contentByPath($base: String, $url: String!, $urlNoSlash: String!) { _Content("))
		assert.Contains(t, c, "item { __typename _id _metadata { key version locale displayName types url { default hierarchical base } } }")
		mustParseDoc(t, doc)
	})

	t.Run("fields joined with base fields", func(t *testing.T) {
		doc := a.AssemblePath(ctx, PathSpec{URL: "/en/", Fields: []string{"_id", "Heading"}})
		assert.Contains(t, compact(doc), "item { __typename _id Heading } } }")
		mustParseDoc(t, doc)
	})

	t.Run("expanded content", func(t *testing.T) {
		shapes := articleShapes()
		shapes["_Content"] = &schema.TypeShape{Name: "_Content", Scalars: scalars("_id", "_fulltext")}
		doc := NewAssembler(schema.NewSynthesizer(shapes), nil).AssemblePath(ctx, PathSpec{Expand: schema.ExpandAuto})
		assert.Contains(t, compact(doc), "item { _id } } }")
	})
}

func TestPathVariables(t *testing.T) {
	assert.Equal(t, map[string]any{"base": "", "url": "/en/about/", "urlNoSlash": "/en/about"}, PathVariables("/en/about", ""))
	assert.Equal(t, map[string]any{"base": "https://x", "url": "/en/about/", "urlNoSlash": "/en/about"}, PathVariables("/en/about/", "https://x"))
}
