package speech

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrUnsupportedMode is returned by Options.Validate for continuous or
// interim recognition.
var ErrUnsupportedMode = errors.New("only single final-result dictation is supported")

// Options configures a dictation session.
type Options struct {
	// Locale is the language spoken into the microphone.
	Locale language.Tag

	// Continuous keeps listening after the first utterance.
	Continuous bool

	// InterimResults reports partial transcripts while speaking.
	InterimResults bool
}

// DefaultOptions returns US English, single utterance, final result only.
func DefaultOptions() Options {
	return Options{Locale: language.AmericanEnglish}
}

// ParseLocale builds Options for a BCP 47 locale string such as "en-US".
// An empty string yields the default locale.
func ParseLocale(s string) (Options, error) {
	opts := DefaultOptions()
	if s == "" {
		return opts, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return opts, fmt.Errorf("parse locale %q: %w", s, err)
	}
	opts.Locale = tag
	return opts, nil
}

// Validate reports whether the adapter can honor the options.
func (o Options) Validate() error {
	if o.Continuous || o.InterimResults {
		return ErrUnsupportedMode
	}
	if o.Locale == language.Und {
		return fmt.Errorf("locale is required")
	}
	return nil
}

// Language returns the ISO 639-1 base language, e.g. "en" for en-US.
func (o Options) Language() string {
	base, _ := o.Locale.Base()
	return base.String()
}
