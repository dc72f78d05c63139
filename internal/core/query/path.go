package query

import (
	"context"
	"strings"

	"github.com/xzzpig/content-rest/internal/core/schema"
)

// PathContentType is the root type queried for URL lookups.
const PathContentType = "_Content"

// pathMetadataSelection is returned for URL lookups that ask for no fields.
const pathMetadataSelection = `__typename
_id
_metadata {
  key
  version
  locale
  displayName
  types
  url {
    default
    hierarchical
    base
  }
}`

const pathHeader = "query contentByPath($base: String, $url: String!, $urlNoSlash: String!)"

const pathArgs = `(
  where: {
    _metadata: { url: { base: { eq: $base } } }
    _and: [
      {
        _or: [
          { _metadata: { url: { default: { eq: $url } } } }
          { _metadata: { url: { default: { eq: $urlNoSlash } } } }
          { _metadata: { url: { hierarchical: { eq: $url } } } }
          { _metadata: { url: { hierarchical: { eq: $urlNoSlash } } } }
        ]
      }
    ]
  }
)`

// PathSpec describes a lookup of one content item by its URL.
type PathSpec struct {
	URL    string
	Base   string
	Fields []string
	Expand schema.ExpansionMode
	Depth  int
}

// PathVariables returns the variables for a URL lookup: the URL with and
// without its trailing slash, and the site base.
func PathVariables(url, base string) map[string]any {
	noSlash := strings.TrimSuffix(url, "/")
	return map[string]any{
		"base":       base,
		"url":        noSlash + "/",
		"urlNoSlash": noSlash,
	}
}

// AssemblePath returns the document matching spec.URL against the default
// and hierarchical URL of any content item. Requested fields are always
// joined with __typename and _id.
func (a *Assembler) AssemblePath(ctx context.Context, spec PathSpec) string {
	sel := pathMetadataSelection
	switch {
	case len(spec.Fields) > 0:
		sel = strings.Join(dedupe(append([]string{"__typename", "_id"}, spec.Fields...)), "\n")
	case spec.Expand != schema.ExpandNone:
		depth := spec.Depth
		if depth < 0 || depth > schema.MaxDepth {
			depth = 0
		}
		if expanded := a.fields.ExpandFields(ctx, PathContentType, depth, spec.Expand); strings.TrimSpace(expanded) != "" {
			sel = expanded
		}
	}
	return block(pathHeader, PathContentType+pathArgs+" "+braces(block("item", sel)))
}
