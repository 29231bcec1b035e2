package feed

import (
	"regexp"
	"strings"
)

// wordPattern matches maximal runs of word characters: letters, digits and
// underscore in any script.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopwords are English function words that carry no search signal
var stopwords = newWordSet(
	"a", "about", "above", "after", "again", "against", "ain", "all", "am", "an",
	"and", "any", "are", "aren", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "couldn", "d", "did",
	"didn", "do", "does", "doesn", "doing", "don", "down", "during", "each", "few",
	"for", "from", "further", "had", "hadn", "has", "hasn", "have", "haven", "having",
	"he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "i",
	"if", "in", "into", "is", "isn", "it", "its", "itself", "just", "ll",
	"m", "ma", "me", "mightn", "more", "most", "mustn", "my", "myself", "needn",
	"no", "nor", "not", "now", "o", "of", "off", "on", "once", "only",
	"or", "other", "our", "ours", "ourselves", "out", "over", "own", "re", "s",
	"same", "shan", "she", "should", "shouldn", "so", "some", "such", "t", "than",
	"that", "the", "their", "theirs", "them", "themselves", "then", "there", "these", "they",
	"this", "those", "through", "to", "too", "under", "until", "up", "ve", "very",
	"was", "wasn", "we", "were", "weren", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "won", "wouldn", "y", "you", "your",
	"yours", "yourself", "yourselves",
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// isStopword reports whether the lower-case word w is ignored by search
func isStopword(w string) bool {
	return stopwords.has(w)
}

// Tokenize lower-cases q, splits it on non-word characters and returns the
// viable words: tokens that are not stopwords, in first-seen order without
// repeats. The result may be empty.
func Tokenize(q string) []string {
	words := wordPattern.FindAllString(strings.ToLower(q), -1)
	seen := make(wordSet, len(words))
	viable := make([]string, 0, len(words))
	for _, w := range words {
		if isStopword(w) || seen.has(w) {
			continue
		}
		seen[w] = struct{}{}
		viable = append(viable, w)
	}
	return viable
}
