package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

const articlePageType = `{"__type":{"name":"ArticlePage","kind":"OBJECT","fields":[
  {"name":"Heading","type":{"name":null,"kind":"NON_NULL","ofType":{"name":"String","kind":"SCALAR","ofType":null}}},
  {"name":"PromoImage","type":{"name":"ImageAsset","kind":"OBJECT","ofType":null}},
  {"name":"MainBody","type":{"name":"IContent","kind":"INTERFACE","ofType":null}},
  {"name":"Tags","type":{"name":null,"kind":"LIST","ofType":{"name":"String","kind":"SCALAR","ofType":null}}}
]}}`

// schemaExecutor answers introspection for ArticlePage only.
type schemaExecutor struct{}

func (schemaExecutor) Execute(_ context.Context, _ string, variables map[string]any, _ ports.AuthContext) (*ports.Result, error) {
	if variables["name"] == "ArticlePage" {
		return &ports.Result{Data: json.RawMessage(articlePageType)}, nil
	}
	return &ports.Result{Data: json.RawMessage(`{"__type":null}`)}, nil
}

func TestPrintShape(t *testing.T) {
	var out bytes.Buffer
	src := schema.NewIntrospector(schemaExecutor{})

	require.NoError(t, printShape(context.Background(), &out, src, "ArticlePage"))

	body := out.String()
	assert.Equal(t, "ArticlePage", gjson.Get(body, "name").String())
	assert.Equal(t, "Heading", gjson.Get(body, "scalars.0.name").String())
	assert.Equal(t, "SCALAR", gjson.Get(body, "scalars.0.kind").String())
	assert.Equal(t, "ImageAsset", gjson.Get(body, "objects.0.target").String())
	assert.Equal(t, "IContent", gjson.Get(body, "polymorphic.0.target").String())
	assert.Equal(t, "Tags", gjson.Get(body, "lists.0.name").String())
	assert.Equal(t, "String", gjson.Get(body, "lists.0.target").String())
}

func TestPrintShape_UnknownType(t *testing.T) {
	var out bytes.Buffer
	src := schema.NewIntrospector(schemaExecutor{})

	err := printShape(context.Background(), &out, src, "Nope")

	assert.ErrorContains(t, err, `"Nope"`)
	assert.Empty(t, out.String())
}
