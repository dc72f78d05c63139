package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xzzpig/content-rest/internal/api/params"
	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/query"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

var assembleOpts struct {
	rawQuery  string
	fields    []string
	fragments []string
	expand    string
	depth     int
}

// assembleCmd prints the document a content request would send upstream.
var assembleCmd = &cobra.Command{
	Use:   "assemble <ContentType>",
	Short: "Print the GraphQL document built for a content type",
	Example: `  content-rest assemble ArticlePage --fields _id,Heading
  content-rest assemble ArticlePage --expand auto --depth 2 --query 'limit=5&locale=en'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger.InitLogger(logger.EnvironmentProduction, logger.Warn, cfg.Log.Levels)
		defer logger.Sync()

		p := params.Parse(assembleOpts.rawQuery)
		flags := cmd.Flags()
		if flags.Changed("fields") {
			p.Fields = assembleOpts.fields
		}
		if flags.Changed("fragments") {
			p.Fragments = assembleOpts.fragments
		}
		if flags.Changed("expand") {
			mode, ok := schema.ParseExpansionMode(assembleOpts.expand)
			if !ok {
				return fmt.Errorf("unknown expansion mode %q", assembleOpts.expand)
			}
			p.Expand = mode
		}
		if flags.Changed("depth") {
			if assembleOpts.depth < 0 || assembleOpts.depth > schema.MaxDepth {
				return fmt.Errorf("depth must be between 0 and %d", schema.MaxDepth)
			}
			p.Depth = assembleOpts.depth
		}

		_, _, assembler := newPipeline(cfg)
		vars := p.Variables()
		doc := assembler.Assemble(cmd.Context(), query.Spec{
			ContentType: args[0],
			Variables:   vars,
			Fields:      p.Fields,
			Fragments:   p.Fragments,
			Expand:      p.Expand,
			Depth:       p.Depth,
		})

		payload, err := json.MarshalIndent(vars.Payload(), "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, doc)
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(payload))
		return nil
	},
}

func init() {
	f := assembleCmd.Flags()
	f.StringVarP(&assembleOpts.rawQuery, "query", "q", "", "REST query string, as sent to /api/{contentType}")
	f.StringSliceVar(&assembleOpts.fields, "fields", nil, "explicit field selection")
	f.StringSliceVar(&assembleOpts.fragments, "fragments", nil, "named fragments to spread")
	f.StringVar(&assembleOpts.expand, "expand", "", "auto, auto_with_fulltext or full")
	f.IntVar(&assembleOpts.depth, "depth", 0, "expansion depth")
	rootCmd.AddCommand(assembleCmd)
}
