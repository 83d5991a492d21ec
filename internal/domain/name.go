package domain

import (
	"regexp"
	"strings"
)

const maxSiteNameLen = 30

// qualifierRes are applied in order; each anchors to end-of-string, so a
// name loses at most one suffix per pattern.
var qualifierRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i) NEAR .+$`),
	regexp.MustCompile(`(?i) AT .+$`),
	regexp.MustCompile(`(?i) ABV .+$`),
	regexp.MustCompile(`(?i) BLW .+$`),
	regexp.MustCompile(`(?i), [A-Z]{2}$`),
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

// CleanSiteName converts a raw USGS site name into a short display name:
// position qualifiers and the trailing state code are stripped, the
// remaining words are title-cased, whitespace is collapsed, and the result
// is truncated to 30 characters.
func CleanSiteName(raw string) string {
	name := raw
	for _, re := range qualifierRes {
		name = re.ReplaceAllString(name, "")
	}

	words := strings.Split(name, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	name = strings.Join(words, " ")

	name = strings.TrimSpace(multiSpaceRe.ReplaceAllString(name, " "))
	if len(name) > maxSiteNameLen {
		name = name[:maxSiteNameLen]
	}
	return name
}
