package zskema

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/reoring/zskema/i18n"
)

// ErrorMap produces a message for an issue that has no explicit per-check
// or per-schema message. Returning "" defers to the built-in catalog.
type ErrorMap func(it Issue) string

// Observer receives one notification per top-level validation call.
type Observer interface {
	ObserveValidation(name string, issues Issues, elapsed time.Duration)
}

// Config carries per-call settings. The zero value is usable: English
// messages, no error map, a disabled logger, and no observer. Config values
// are passed explicitly to each call so concurrent validations can use
// different settings safely.
type Config struct {
	Locale   language.Tag
	ErrorMap ErrorMap
	Logger   zerolog.Logger
	Observer Observer
	// Name labels the validated schema in logs and observations.
	Name string
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{Locale: language.English, Logger: zerolog.Nop()}
}

// Message resolves the fallback message for an issue: ErrorMap first, then
// the i18n catalog for Locale.
func (c Config) Message(it Issue) string {
	if c.ErrorMap != nil {
		if m := c.ErrorMap(it); m != "" {
			return m
		}
	}
	return i18n.For(c.Locale).Message(it.Code, it.Params)
}
