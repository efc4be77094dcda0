package app

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/jsonschema"
	"github.com/reoring/zskema/source"
)

// NewJSONSchemaCmd builds `zskema jsonschema`. With --check the exported
// document is compiled by a draft 2020-12 validator, and any documents
// given as arguments are validated against it.
func NewJSONSchemaCmd(e *session) *cobra.Command {
	var (
		sf    schemaFlags
		check bool
	)
	cmd := &cobra.Command{
		Use:   "jsonschema --schema FILE [--check [documents...]]",
		Short: "Export a schema manifest as a JSON Schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && !check {
				return fmt.Errorf("documents can only be given together with --check")
			}
			schema, err := sf.load(e, source.Options{})
			if err != nil {
				return err
			}
			doc, err := dsl.ToJSONSchema(schema)
			if err != nil {
				return err
			}
			if check {
				return checkExport(cmd, e, doc, args)
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	sf.register(cmd)
	cmd.Flags().BoolVar(&check, "check", false, "compile the export and validate documents with it")
	return cmd
}

func checkExport(cmd *cobra.Command, e *session, doc *jsonschema.Schema, files []string) error {
	v, err := jsonschema.Compile(doc)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := false
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		docs, err := source.DecodeBytes(b, source.FormatOf(f), source.Options{AllowDuplicateKeys: true})
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		for _, d := range docs {
			if err := v.Validate(d.Value); err != nil {
				failed = true
				fmt.Fprintf(out, "FAIL  %s#%d: %v\n", f, d.Index, err)
				continue
			}
			fmt.Fprintf(out, "ok    %s#%d\n", f, d.Index)
		}
	}
	e.logger.Debug().Int("documents", len(files)).Msg("export checked")
	if failed {
		return ErrInvalid
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "schema compiles")
	}
	return nil
}
