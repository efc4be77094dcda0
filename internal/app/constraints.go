package app

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/source"
)

// NewConstraintsCmd builds `zskema constraints`, which prints the static
// per-field constraints of an object schema for form generation.
func NewConstraintsCmd(e *session) *cobra.Command {
	var sf schemaFlags
	cmd := &cobra.Command{
		Use:   "constraints --schema FILE",
		Short: "Print per-field form constraints of an object schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := sf.load(e, source.Options{})
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(dsl.StaticConstraints(schema), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	sf.register(cmd)
	return cmd
}
