package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/schema"
)

type fieldView struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
}

type shapeView struct {
	Name        string      `json:"name"`
	Scalars     []fieldView `json:"scalars"`
	Objects     []fieldView `json:"objects"`
	Polymorphic []fieldView `json:"polymorphic"`
	Lists       []fieldView `json:"lists"`
}

func viewFields(fields []schema.FieldDescriptor) []fieldView {
	out := make([]fieldView, 0, len(fields))
	for _, f := range fields {
		v := fieldView{Name: f.Name, Kind: string(f.Kind), Target: f.TargetType}
		if v.Target == "" {
			v.Target = f.ElemType
		}
		out = append(out, v)
	}
	return out
}

// printShape writes the classified shape of typeName as indented JSON.
func printShape(ctx context.Context, out io.Writer, src schema.ShapeSource, typeName string) error {
	shape, ok := src.GetTypeShape(ctx, typeName)
	if !ok {
		return fmt.Errorf("type %q not found or upstream unreachable", typeName)
	}

	b, err := json.MarshalIndent(shapeView{
		Name:        shape.Name,
		Scalars:     viewFields(shape.Scalars),
		Objects:     viewFields(shape.Objects),
		Polymorphic: viewFields(shape.Polymorphic),
		Lists:       viewFields(shape.Lists),
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

// introspectCmd prints the classified fields of a schema type.
var introspectCmd = &cobra.Command{
	Use:   "introspect <Type>",
	Short: "Print the field classification of an upstream type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger.InitLogger(logger.EnvironmentProduction, logger.Warn, cfg.Log.Levels)
		defer logger.Sync()

		_, introspector, _ := newPipeline(cfg)
		return printShape(cmd.Context(), cmd.OutOrStdout(), introspector, args[0])
	},
}

func init() {
	rootCmd.AddCommand(introspectCmd)
}
