package sanitize

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CategoryProfanity is the category reported by ProfanityClassifier.
const CategoryProfanity = "profanity"

// DefaultBannedWords is a small starter list. Extend via PROFANITY_WORDS.
var DefaultBannedWords = []string{
	"fuck", "fucking", "fucker", "motherfucker", "shit", "bullshit",
	"bastard", "bitch", "dick", "cock", "pussy", "cunt", "asshole",
	"dumbass", "jackass", "retard", "slut", "whore", "douche", "wanker",
	"twat", "prick", "bollocks", "scammer",
}

// ProfanityClassifier flags banned words. ASCII words match case-insensitively
// on word boundaries; other words (scripts without spaces) match as substrings.
type ProfanityClassifier struct {
	patterns []*regexp.Regexp
	longest  int
}

// NewProfanityClassifier builds a classifier from words, trimmed and de-duplicated.
func NewProfanityClassifier(words []string) *ProfanityClassifier {
	seen := map[string]struct{}{}
	var pats []*regexp.Regexp
	longest := 0
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		longest = max(longest, utf8.RuneCountInString(w))

		pattern := regexp.QuoteMeta(w)
		if isASCIIWord(w) {
			pattern = `(?i)\b` + pattern + `\b`
		}
		pats = append(pats, regexp.MustCompile(pattern))
	}
	return &ProfanityClassifier{patterns: pats, longest: longest}
}

// LongestWord returns the length in code points of the longest banned word.
func (pc *ProfanityClassifier) LongestWord() int {
	return pc.longest
}

// Classify reports every banned-word match as a code-point range.
func (pc *ProfanityClassifier) Classify(_ context.Context, text string) (Classification, error) {
	var ranges []Range
	for _, re := range pc.patterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if m[0] == m[1] {
				continue
			}
			from := utf8.RuneCountInString(text[:m[0]])
			to := from + utf8.RuneCountInString(text[m[0]:m[1]]) - 1
			ranges = append(ranges, Range{From: from, To: to})
		}
	}
	if len(ranges) == 0 {
		return Classification{}, nil
	}
	return Classification{
		Filtered: true,
		Filters:  map[string][]Range{CategoryProfanity: ranges},
	}, nil
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			return false
		}
	}
	return s != ""
}
