// Package sanitize masks flagged spans of user-authored text before it is
// stored or displayed.
package sanitize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"islandmarket/internal/models"
	"islandmarket/internal/observability"
)

// DefaultPlaceholder replaces every flagged code point.
const DefaultPlaceholder = '□'

// ErrPlaceholderFlagged is returned by VerifyPlaceholder when the classifier
// flags masked output.
var ErrPlaceholderFlagged = errors.New("placeholder is flagged by the classifier")

// Range is an inclusive span of code-point offsets.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Classification is the classifier's verdict on a text.
type Classification struct {
	Filtered bool               `json:"filtered"`
	Filters  map[string][]Range `json:"filters"`
}

// Classifier flags objectionable spans of text. It must never flag the placeholder.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (Classification, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, text string) (Classification, error) {
	return f(ctx, text)
}

// Sanitizer replaces classifier-flagged code points with a placeholder.
type Sanitizer struct {
	classifier  Classifier
	placeholder rune
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithPlaceholder overrides DefaultPlaceholder.
func WithPlaceholder(r rune) Option {
	return func(s *Sanitizer) { s.placeholder = r }
}

// New returns a Sanitizer backed by classifier.
func New(classifier Classifier, opts ...Option) *Sanitizer {
	s := &Sanitizer{classifier: classifier, placeholder: DefaultPlaceholder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize returns text with every flagged code point replaced. The result
// has the same number of code points as text. A classifier failure is
// returned as a ClassifierError and no text is returned.
func (s *Sanitizer) Sanitize(ctx context.Context, text string) (string, error) {
	verdict, err := s.classifier.Classify(ctx, text)
	if err != nil {
		observability.ClassifierErrors.Inc()
		return "", models.NewClassifierError(err)
	}
	if !verdict.Filtered {
		return text, nil
	}

	runes := []rune(text)
	flagged := make([]bool, len(runes))
	for category, ranges := range verdict.Filters {
		n := 0
		for _, r := range ranges {
			from, to := max(r.From, 0), min(r.To, len(runes)-1)
			for i := from; i <= to; i++ {
				if !flagged[i] {
					flagged[i] = true
					n++
				}
			}
		}
		if n > 0 {
			observability.SanitizedRunes.WithLabelValues(category).Add(float64(n))
		}
	}

	for i, f := range flagged {
		if f {
			runes[i] = s.placeholder
		}
	}
	return string(runes), nil
}

// VerifyPlaceholder classifies runs of 1 to maxRun placeholders and fails if
// any of them is flagged, since masked text would then be masked again.
func (s *Sanitizer) VerifyPlaceholder(ctx context.Context, maxRun int) error {
	for n := 1; n <= max(maxRun, 1); n++ {
		run := strings.Repeat(string(s.placeholder), n)
		verdict, err := s.classifier.Classify(ctx, run)
		if err != nil {
			return models.NewClassifierError(err)
		}
		if verdict.Filtered {
			return fmt.Errorf("%w: %q", ErrPlaceholderFlagged, run)
		}
	}
	return nil
}
