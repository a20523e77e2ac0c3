package retrieval

import "regexp"

// Brand and intent detection over the raw query text. Both signals are
// best-effort: absence of a match falls through to default behavior (no
// brand filter, top-3 context cap). They live behind this narrow interface
// so they can be swapped for a real classifier without touching the
// formatter.

// capitalizedRun matches one or more consecutive capitalized words.
var capitalizedRun = regexp.MustCompile(`\b[A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*)*`)

// listAllWords matches whole words that signal a "list everything" intent.
var listAllWords = regexp.MustCompile(`(?i)\b(all|list|other|others|more|everything)\b`)

// knownBrands is the fallback keyword list for queries typed in lowercase.
// Drawn from the catalog's most common brands.
var knownBrands = []struct {
	pattern   *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`(?i)\bnike\b`), "Nike"},
	{regexp.MustCompile(`(?i)\badidas\b`), "Adidas"},
	{regexp.MustCompile(`(?i)\bpuma\b`), "Puma"},
	{regexp.MustCompile(`(?i)\bvans\b`), "Vans"},
	{regexp.MustCompile(`(?i)\breebok\b`), "Reebok"},
	{regexp.MustCompile(`(?i)\bconverse\b`), "Converse"},
	{regexp.MustCompile(`(?i)\blevis\b`), "Levis"},
	{regexp.MustCompile(`(?i)\broadster\b`), "Roadster"},
	{regexp.MustCompile(`(?i)\bwrangler\b`), "Wrangler"},
	{regexp.MustCompile(`(?i)\bfila\b`), "Fila"},
}

// ExtractBrand scans the query for a brand hint: the longest run of
// capitalized words wins; lowercase queries fall back to a fixed keyword
// list. The second return value is false when no hint was found.
func ExtractBrand(text string) (string, bool) {
	runs := capitalizedRun.FindAllString(text, -1)
	if len(runs) > 0 {
		longest := runs[0]
		for _, run := range runs[1:] {
			if len(run) > len(longest) {
				longest = run
			}
		}
		return longest, true
	}

	for _, b := range knownBrands {
		if b.pattern.MatchString(text) {
			return b.canonical, true
		}
	}

	return "", false
}

// WantsAll reports whether the query asks to enumerate everything rather
// than see a short selection.
func WantsAll(text string) bool {
	return listAllWords.MatchString(text)
}
