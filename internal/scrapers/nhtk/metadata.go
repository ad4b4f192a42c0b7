package nhtk

import (
	"regexp"
	"strings"

	"nhtk-schedule/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const groupLabel = "Группа"

var groupRegex = regexp.MustCompile(groupLabel + `[\s\p{Z}]+[\d.п]+`)

var periodRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Расписание занятий.*?\d{4}[\s\p{Z}]*г\.?`),
	regexp.MustCompile(`(?i)\d+[\s\p{Z}]+[\p{L}\p{N}_]+[\s\p{Z}]*—[\s\p{Z}]*\d+[\s\p{Z}]+[\p{L}\p{N}_]+[\s\p{Z}]+\d{4}`),
}

// findGroup returns the text of the first text node naming the group, with
// the label removed.
func findGroup(texts []string) string {
	for _, text := range texts {
		if !groupRegex.MatchString(text) {
			continue
		}
		text = strings.TrimSpace(text)
		return strings.TrimSpace(strings.ReplaceAll(text, groupLabel, ""))
	}
	return ""
}

// findPeriod returns the first text node that matches any of the period
// patterns.
func findPeriod(texts []string) string {
	for _, text := range texts {
		for _, re := range periodRegexes {
			if re.MatchString(text) {
				return strings.TrimSpace(text)
			}
		}
	}
	return ""
}

func parseMetadata(doc *goquery.Document) (group, period string) {
	texts := htmlutil.TextNodes(doc)
	return findGroup(texts), findPeriod(texts)
}
