package nhtk

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"nhtk-schedule/pkg/htmlutil"
)

var (
	lessonNumberRegex = regexp.MustCompile(`^\s*[1-9]\s*$`)
	timeRangeRegex    = regexp.MustCompile(`\d{1,2}:\d{2}–\d{1,2}:\d{2}`)
	looseTimeRegex    = regexp.MustCompile(`\d{1,2}:\d{2}`)
	roomRegex         = regexp.MustCompile(`(?i)^(\d{2,3}|с/[зк])$`)
	numericRegex      = regexp.MustCompile(`^\d+$`)
	subgroupRegex     = regexp.MustCompile(`\[(\d+[\s\p{Z}]*п/г)\]`)
	enrollmentRegex   = regexp.MustCompile(`[\s\p{Z}]*к/п[\s\p{Z}]*`)
)

// normalizeHref makes `href` absolute by prefixing the base url, leading
// slashes of the relative path are dropped.
func normalizeHref(baseUrl, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err == nil && parsed.IsAbs() {
		return href
	}
	return strings.TrimRight(baseUrl, "/") + "/" + strings.TrimLeft(href, "/")
}

// cellRule assigns a cell to a lesson field, rules are tried in order and the
// first one that matches a cell claims it.
type cellRule struct {
	field string
	match func(o Options, l *Lesson, c Cell) bool
	apply func(o Options, l *Lesson, c Cell)
}

var cellRules = []cellRule{
	{
		field: "lesson_number",
		match: func(_ Options, _ *Lesson, c Cell) bool {
			return c.Index < 2 && lessonNumberRegex.MatchString(c.Text)
		},
		apply: func(_ Options, l *Lesson, c Cell) {
			number, err := strconv.Atoi(strings.TrimSpace(c.Text))
			if err == nil {
				l.LessonNumber = intPtr(number)
			}
		},
	},
	{
		field: "time",
		match: func(_ Options, _ *Lesson, c Cell) bool {
			return timeRangeRegex.MatchString(c.Text)
		},
		apply: func(_ Options, l *Lesson, c Cell) {
			l.Time = timeRangeRegex.FindString(c.Text)
			if l.LessonNumber != nil {
				return
			}
			number, ok := lessonNumberForTime(l.Time)
			if ok {
				l.LessonNumber = intPtr(number)
			}
		},
	},
	{
		field: "subject",
		match: func(o Options, _ *Lesson, c Cell) bool {
			return c.HasLink() && strings.Contains(c.Href, o.CourseDomain)
		},
		apply: func(_ Options, l *Lesson, c Cell) {
			l.Subject = cleanSubject(c.Text)
			l.SubjectUrl = c.Href
			match := subgroupRegex.FindStringSubmatch(c.Text)
			if len(match) >= 2 {
				l.Subgroup = strings.TrimSpace(match[1])
			}
		},
	},
	{
		field: "teacher",
		match: func(o Options, l *Lesson, c Cell) bool {
			return c.HasLink() && strings.Contains(c.Href, o.ScheduleDomain) && l.Teacher == ""
		},
		apply: func(_ Options, l *Lesson, c Cell) {
			l.Teacher = c.Text
			l.TeacherUrl = c.Href
		},
	},
	{
		field: "room",
		match: func(_ Options, _ *Lesson, c Cell) bool {
			return roomRegex.MatchString(c.Text)
		},
		apply: func(_ Options, l *Lesson, c Cell) {
			l.Room = c.Text
			if c.HasLink() {
				l.RoomUrl = c.Href
			}
		},
	},
}

// cleanSubject collapses whitespace and drops the enrollment marker and the
// subgroup annotation from a subject title.
func cleanSubject(text string) string {
	subject := htmlutil.CollapseWhitespace(text)
	subject = subgroupRegex.ReplaceAllString(subject, " ")
	subject = enrollmentRegex.ReplaceAllString(subject, " ")
	return htmlutil.CollapseWhitespace(subject)
}

// matchRule returns the rule that claims the cell, or nil if no rule does.
func matchRule(o Options, l *Lesson, c Cell) *cellRule {
	for i := range cellRules {
		if cellRules[i].match(o, l, c) {
			return &cellRules[i]
		}
	}
	return nil
}

// isFallbackCandidate reports whether a cell that no rule claimed may still
// hold a subject or teacher name.
func isFallbackCandidate(text string) bool {
	return text != "" &&
		!numericRegex.MatchString(text) &&
		!looseTimeRegex.MatchString(text) &&
		!roomRegex.MatchString(text)
}

// Extraction is the outcome of extracting a single row, Rejected is empty when
// the row produced a lesson.
type Extraction struct {
	Lesson   Lesson
	Rejected RejectReason
	Detail   string
}

func (e Extraction) Ok() bool {
	return e.Rejected == ""
}

// extractLesson assigns the cells of a lesson row to lesson fields.
func extractLesson(o Options, cells []Cell, day string) Extraction {
	lesson := Lesson{Day: day}

	for _, c := range cells {
		rule := matchRule(o, &lesson, c)
		if rule != nil {
			rule.apply(o, &lesson, c)
		}
	}

	if lesson.Subject == "" {
		for _, c := range cells {
			if !isFallbackCandidate(c.Text) {
				continue
			}
			switch {
			case lesson.Subject == "":
				lesson.Subject = htmlutil.CollapseWhitespace(c.Text)
			case lesson.Teacher == "":
				lesson.Teacher = c.Text
			}
		}
	}

	if lesson.Subject == "" {
		return Extraction{Rejected: REJECT_NO_SUBJECT}
	}
	if lesson.Time == "" {
		return Extraction{Rejected: REJECT_NO_TIME}
	}
	return Extraction{Lesson: lesson}
}

// safeExtractLesson turns a panic while extracting a row into a rejection so
// that one broken row cannot stop the rows after it.
func safeExtractLesson(o Options, cells []Cell, day string) (result Extraction) {
	defer func() {
		recovered := recover()
		if recovered != nil {
			result = Extraction{
				Rejected: REJECT_PANIC,
				Detail:   fmt.Sprint(recovered),
			}
		}
	}()
	return extractLesson(o, cells, day)
}
