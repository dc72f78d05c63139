package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func TestAssembleCommand_ExplicitFields(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"assemble", "ArticlePage", "--fields", "_id,Heading", "--query", "limit=5&locale=en"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	doc, payload, found := bytes.Cut(out.Bytes(), []byte("\n\n"))
	require.True(t, found)
	_, err := parser.ParseQuery(&ast.Source{Input: string(doc)})
	require.NoError(t, err)
	assert.Contains(t, string(doc), "ArticlePage(limit: $limit, locale: $locale)")
	assert.Regexp(t, `_id\s+Heading`, string(doc))
	assert.JSONEq(t, `{"limit":5,"locale":["en"]}`, string(payload))
}

func TestAssembleCommand_RejectsUnknownExpand(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"assemble", "ArticlePage", "--expand", "everything"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}
