// Package params decodes REST query strings into query.Params.
//
// The grammar follows the bracket conventions of common JavaScript
// query-string parsers: a[b][c]=v and a.b.c=v build nested objects,
// a[]=v and repeated keys build lists, a[0]=v builds indexed lists.
package params

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/query"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

// MaxDepth is the deepest key nesting decoded; deeper segments stay joined
// in the last key.
const MaxDepth = 10

// maxIndex bounds a[N]=v list indexes. Larger indexes keep an object.
const maxIndex = 20

func paramsLog() *zap.Logger {
	return logger.Named("api.params")
}

// Decode turns a raw query string into an object Value, keeping the order in
// which keys first appear.
func Decode(rawQuery string) query.Value {
	root := query.Object()
	for _, pair := range strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' }) {
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			paramsLog().Debug("Skipping undecodable key", zap.String("key", rawKey))
			continue
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			paramsLog().Debug("Skipping undecodable value", zap.String("key", key))
			continue
		}
		segs := segments(key)
		if len(segs) == 0 || segs[0] == "" {
			continue
		}
		insert(root, segs, query.String(val))
	}
	return normalize(root)
}

// segments splits a[b][c], a.b.c and mixtures of both.
func segments(key string) []string {
	var segs []string
	var cur strings.Builder
	inBracket := false
	for i := 0; i < len(key); i++ {
		ch := key[i]
		switch {
		case ch == '[' && !inBracket:
			if cur.Len() > 0 || len(segs) == 0 {
				segs = append(segs, cur.String())
			}
			cur.Reset()
			inBracket = true
		case ch == ']' && inBracket:
			segs = append(segs, cur.String())
			cur.Reset()
			inBracket = false
		case ch == '.' && !inBracket:
			if cur.Len() > 0 {
				segs = append(segs, cur.String())
			}
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if cur.Len() > 0 || inBracket {
		segs = append(segs, cur.String())
	}

	if len(segs) > MaxDepth+1 {
		rest := "[" + strings.Join(segs[MaxDepth+1:], "][") + "]"
		segs = append(segs[:MaxDepth+1:MaxDepth+1], rest)
	}
	return segs
}

// insert places val under segs. An empty segment appends to a list; a key
// seen twice collects its values into a list.
func insert(obj query.Value, segs []string, val query.Value) {
	key := segs[0]
	existing, ok := obj.Get(key)

	if len(segs) == 1 || (len(segs) == 2 && segs[1] == "") {
		if !ok {
			if len(segs) == 2 {
				val = query.List(val)
			}
			obj.Set(key, val)
			return
		}
		obj.Set(key, existing.Append(val))
		return
	}

	if !ok {
		existing = query.Object()
		obj.Set(key, existing)
	} else if existing.Kind() != query.KindObject {
		paramsLog().Debug("Ignoring nested key under a plain value", zap.String("key", key))
		return
	}
	insert(existing, segs[1:], val)
}

// normalize turns objects whose keys are all small indexes into lists.
func normalize(v query.Value) query.Value {
	switch v.Kind() {
	case query.KindList:
		out := query.List()
		for _, item := range v.Items() {
			out = out.Append(normalize(item))
		}
		return out
	case query.KindObject:
		keys := v.Keys()
		if idx, ok := indexes(keys); ok {
			out := query.List()
			for _, i := range idx {
				item, _ := v.Get(strconv.Itoa(i))
				out = out.Append(normalize(item))
			}
			return out
		}
		out := query.Object()
		for _, k := range keys {
			item, _ := v.Get(k)
			out.Set(k, normalize(item))
		}
		return out
	default:
		return v
	}
}

func indexes(keys []string) ([]int, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 || n > maxIndex || strconv.Itoa(n) != k {
			return nil, false
		}
		idx = append(idx, n)
	}
	sort.Ints(idx)
	return idx, true
}

// Parse decodes rawQuery into the parameters understood by the content
// endpoints. Invalid numbers, unknown expand or mode values and depths
// outside [0, schema.MaxDepth] are dropped.
func Parse(rawQuery string) query.Params {
	tree := Decode(rawQuery)
	var p query.Params

	if n, ok := number(tree, "limit"); ok {
		p.Limit = &n
	}
	if n, ok := number(tree, "skip"); ok {
		p.Skip = &n
	}
	p.Cursor = first(tree, "cursor")

	if v, ok := tree.Get("where"); ok {
		p.Where = v
	}
	if v, ok := tree.Get("orderBy"); ok {
		p.OrderBy = v
	}
	p.IDs = list(tree, "ids")
	p.Locale = list(tree, "locale")
	p.Track = first(tree, "track")
	if _, ok := tree.Get("usePinned"); ok {
		b := first(tree, "usePinned") == "true"
		p.UsePinned = &b
	}
	if v, ok := tree.Get("variation"); ok {
		p.Variation = v
	}

	p.Fields = list(tree, "fields")
	p.Fragments = list(tree, "fragments")
	if mode, ok := schema.ParseExpansionMode(first(tree, "expand")); ok {
		p.Expand = mode
	}
	if d, err := strconv.Atoi(first(tree, "depth")); err == nil && d >= 0 && d <= schema.MaxDepth {
		p.Depth = d
	}

	switch m := ports.Mode(first(tree, "mode")); m {
	case ports.ModeEdit, ports.ModeExternalPreview, ports.ModePublic:
		p.Mode = m
	}
	p.PreviewToken = first(tree, "previewToken")
	if p.PreviewToken == "" {
		p.PreviewToken = first(tree, "preview_token")
	}
	p.UseStoredQueries = first(tree, "useStoredQueries") == "true"
	return p
}

// first returns the string under key, or the first string of a list.
func first(tree query.Value, key string) string {
	v, ok := tree.Get(key)
	if !ok {
		return ""
	}
	switch v.Kind() {
	case query.KindString:
		return v.Str()
	case query.KindList:
		if items := v.Items(); len(items) > 0 {
			return items[0].Str()
		}
	}
	return ""
}

// list returns the strings under key. A single value is split on commas.
func list(tree query.Value, key string) []string {
	v, ok := tree.Get(key)
	if !ok {
		return nil
	}
	var out []string
	switch v.Kind() {
	case query.KindString:
		for _, s := range strings.Split(v.Str(), ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case query.KindList:
		for _, item := range v.Items() {
			if s := strings.TrimSpace(item.Str()); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func number(tree query.Value, key string) (int, bool) {
	s := first(tree, key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		paramsLog().Debug("Dropping non-integer parameter", zap.String("key", key), zap.String("value", s))
		return 0, false
	}
	return n, true
}
