package app

import (
	"github.com/spf13/cobra"

	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/manifest"
	"github.com/reoring/zskema/source"
)

// schemaFlags are the manifest options shared by every subcommand.
type schemaFlags struct {
	path   string
	strict bool
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "schema", "s", "", "schema manifest (YAML or JSON)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject unsupported manifest keywords")
	_ = cmd.MarkFlagRequired("schema")
}

// load compiles the manifest and logs its warnings.
func (f *schemaFlags) load(e *session, src source.Options) (dsl.Schema, error) {
	schema, diag, err := manifest.LoadFile(f.path, manifest.Options{Strict: f.strict, Source: src})
	if err != nil {
		return nil, err
	}
	for _, w := range diag.Warnings() {
		e.logger.Warn().Str("schema", f.path).Msg(w)
	}
	e.logger.Debug().Str("schema", f.path).Msg("schema compiled")
	return schema, nil
}
