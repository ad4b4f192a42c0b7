package nhtk

import (
	"time"
)

const (
	DEFAULT_BASE_URL        = "https://расписание.нхтк.рф"
	DEFAULT_COURSE_DOMAIN   = "do.nhtk-edu.ru"
	DEFAULT_SCHEDULE_DOMAIN = "расписание.нхтк.рф"
	DEFAULT_PAGE_URL        = "https://расписание.нхтк.рф/09.07.13п1.html"
)

// Options controls how links found in the table are resolved and classified.
type Options struct {
	// BaseUrl is prefixed to every relative link.
	BaseUrl string
	// CourseDomain is the domain of the course platform, a link to it marks a subject cell.
	CourseDomain string
	// ScheduleDomain is the domain of the schedule system itself, a link to it marks a teacher cell.
	ScheduleDomain string
}

func DefaultOptions() Options {
	return Options{
		BaseUrl:        DEFAULT_BASE_URL,
		CourseDomain:   DEFAULT_COURSE_DOMAIN,
		ScheduleDomain: DEFAULT_SCHEDULE_DOMAIN,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.BaseUrl == "" {
		o.BaseUrl = defaults.BaseUrl
	}
	if o.CourseDomain == "" {
		o.CourseDomain = defaults.CourseDomain
	}
	if o.ScheduleDomain == "" {
		o.ScheduleDomain = defaults.ScheduleDomain
	}
	return o
}

type Metadata struct {
	SourceUrl string    `json:"source_url"`
	ParseDate time.Time `json:"parse_date"`
	Group     string    `json:"group"`
	Period    string    `json:"period"`
}

// Lesson is a single class occurrence, Time and Subject are never empty.
type Lesson struct {
	Day          string `json:"day"`
	LessonNumber *int   `json:"lesson_number"`
	Time         string `json:"time"`
	Subject      string `json:"subject"`
	SubjectUrl   string `json:"subject_url"`
	Teacher      string `json:"teacher"`
	TeacherUrl   string `json:"teacher_url"`
	Room         string `json:"room"`
	RoomUrl      string `json:"room_url"`
	Subgroup     string `json:"subgroup"`
}

// Document is the result of parsing one schedule page.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Schedule []Lesson `json:"schedule"`
}

// Cell is a table cell reduced to what the extractor looks at.
type Cell struct {
	Index int
	Text  string
	// Href is the normalized target of the first link in the cell, empty if
	// the cell had no link.
	Href string
}

func (c Cell) HasLink() bool {
	return c.Href != ""
}

type Row struct {
	Index int
	Cells []Cell
}

func (r Row) Texts() []string {
	texts := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		texts[i] = c.Text
	}
	return texts
}

type RejectReason string

const (
	REJECT_NO_SUBJECT RejectReason = "no_subject"
	REJECT_NO_TIME    RejectReason = "no_time"
	REJECT_PANIC      RejectReason = "panic"
)

// Rejection describes a row that looked like a lesson row but did not yield a lesson.
type Rejection struct {
	Row    int
	Day    string
	Cells  []string
	Reason RejectReason
	Detail string
}

func intPtr(n int) *int {
	return &n
}
