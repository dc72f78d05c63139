package main

import (
	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/query"
	"github.com/xzzpig/content-rest/internal/core/schema"
	"github.com/xzzpig/content-rest/internal/core/upstream"
)

var publicAuth = ports.AuthContext{Mode: ports.ModePublic}

// newPipeline wires the upstream client, the schema cache and the assembler
// the way every command uses them.
func newPipeline(cfg *config.Config, opts ...schema.IntrospectorOption) (*upstream.Client, *schema.Introspector, *query.Assembler) {
	client := upstream.New(cfg.Upstream, nil)
	opts = append([]schema.IntrospectorOption{schema.WithTTL(cfg.Introspection.TTL)}, opts...)
	introspector := schema.NewIntrospector(client, opts...)
	return client, introspector, query.NewAssembler(schema.NewSynthesizer(introspector), nil)
}
