package query

import (
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

// Names of the variables a content query may declare.
const (
	VarCursor    = "cursor"
	VarIDs       = "ids"
	VarLimit     = "limit"
	VarLocale    = "locale"
	VarOrderBy   = "orderBy"
	VarSkip      = "skip"
	VarTrack     = "track"
	VarUsePinned = "usePinned"
	VarVariation = "variation"
	VarWhere     = "where"
)

// declaration is one entry of the variable vocabulary. A typed declaration
// with an empty GraphQL type is prefixed by the content type name.
type declaration struct {
	name   string
	gqlTyp string
	suffix string
}

func (d declaration) typeFor(contentType string) string {
	if d.suffix != "" {
		return contentType + d.suffix
	}
	return d.gqlTyp
}

// vocabulary lists the declarations in emission order.
var vocabulary = []declaration{
	{name: VarCursor, gqlTyp: "String"},
	{name: VarIDs, gqlTyp: "[String]"},
	{name: VarLimit, gqlTyp: "Int"},
	{name: VarLocale, gqlTyp: "[Locales]"},
	{name: VarOrderBy, suffix: "OrderByInput"},
	{name: VarSkip, gqlTyp: "Int"},
	{name: VarTrack, gqlTyp: "String"},
	{name: VarUsePinned, gqlTyp: "usePinnedInput"},
	{name: VarVariation, gqlTyp: "VariationInput"},
	{name: VarWhere, suffix: "WhereInput"},
}

// Variables holds values for the vocabulary. Keys outside it are never
// declared in a document.
type Variables map[string]Value

// Payload converts v into the map sent alongside the document.
func (v Variables) Payload() map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Params is the structured form of a REST query string.
type Params struct {
	Limit     *int
	Skip      *int
	Cursor    string
	Where     Value
	OrderBy   Value
	IDs       []string
	Locale    []string
	Track     string
	UsePinned *bool
	Variation Value

	Fields    []string
	Fragments []string
	Expand    schema.ExpansionMode
	Depth     int

	Mode             ports.Mode
	PreviewToken     string
	UseStoredQueries bool
}

// Variables maps p onto the variable vocabulary. Empty strings and empty
// lists are not sent.
func (p Params) Variables() Variables {
	vars := make(Variables)
	if p.Limit != nil {
		vars[VarLimit] = Int(*p.Limit)
	}
	if p.Skip != nil {
		vars[VarSkip] = Int(*p.Skip)
	}
	if p.Cursor != "" {
		vars[VarCursor] = String(p.Cursor)
	}
	if len(p.IDs) > 0 {
		vars[VarIDs] = Strings(p.IDs)
	}
	if !p.Where.IsNull() {
		vars[VarWhere] = p.Where
	}
	if !p.OrderBy.IsNull() {
		vars[VarOrderBy] = p.OrderBy
	}
	if len(p.Locale) > 0 {
		vars[VarLocale] = Strings(p.Locale)
	}
	if p.Track != "" {
		vars[VarTrack] = String(p.Track)
	}
	if p.UsePinned != nil {
		vars[VarUsePinned] = Bool(*p.UsePinned)
	}
	if !p.Variation.IsNull() {
		vars[VarVariation] = p.Variation
	}
	return vars
}

// Auth returns the auth context requested through the query string.
func (p Params) Auth() ports.AuthContext {
	return ports.AuthContext{Mode: p.Mode, PreviewToken: p.PreviewToken, UseStoredQueries: p.UseStoredQueries}
}
