package app

import (
	"fmt"
	"strings"
)

var outputFormats = []string{"text", "json", "flatten", "tree"}

// formatValue implements pflag.Value to restrict --output to known formats.
type formatValue string

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(v string) error {
	for _, known := range outputFormats {
		if v == known {
			*f = formatValue(v)
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(outputFormats, ", "))
}

func (f *formatValue) Type() string { return "<format>" }
