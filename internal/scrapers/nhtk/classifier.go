package nhtk

import (
	"regexp"
	"strings"
)

var dayHeaderRegex = regexp.MustCompile(
	`^(Понедельник|Вторник|Среда|Четверг|Пятница|Суббота|Воскресенье),[\s\p{Z}]+\d+[\s\p{Z}]+[\p{L}\p{N}_]+`,
)

// column titles of the header row, in both spellings the site uses.
var headerKeywords = []string{
	"Время",
	"Предмет",
	"Преподаватель",
	"Препод.",
	"Ауд.",
}

const minLessonCells = 4

type RowKind int

const (
	ROW_EMPTY RowKind = iota
	ROW_DAY_HEADER
	ROW_COLUMN_HEADER
	ROW_LESSON
	ROW_SKIPPED
)

func (k RowKind) String() string {
	switch k {
	case ROW_EMPTY:
		return "empty"
	case ROW_DAY_HEADER:
		return "day_header"
	case ROW_COLUMN_HEADER:
		return "column_header"
	case ROW_LESSON:
		return "lesson"
	case ROW_SKIPPED:
		return "skipped"
	default:
		return "unknown"
	}
}

func rowFullText(row Row) string {
	return strings.Join(row.Texts(), " ")
}

// classifyRow decides what a row is given whether a day header has been seen yet,
// for day headers it also returns the day text.
func classifyRow(row Row, haveDay bool) (RowKind, string) {
	if len(row.Cells) == 0 {
		return ROW_EMPTY, ""
	}

	fullText := rowFullText(row)
	day := dayHeaderRegex.FindString(fullText)
	if day != "" {
		return ROW_DAY_HEADER, day
	}

	for _, keyword := range headerKeywords {
		if strings.Contains(fullText, keyword) {
			return ROW_COLUMN_HEADER, ""
		}
	}

	if haveDay && len(row.Cells) >= minLessonCells {
		return ROW_LESSON, ""
	}
	return ROW_SKIPPED, ""
}

// tableState is the accumulator threaded through the rows of a table.
type tableState struct {
	CurrentDay string
	Lessons    []Lesson
	Rejections []Rejection
	DayHeaders []string
}

// foldRow advances the table state by one row.
func foldRow(o Options, state tableState, row Row) tableState {
	kind, day := classifyRow(row, state.CurrentDay != "")
	switch kind {
	case ROW_DAY_HEADER:
		state.CurrentDay = day
		state.DayHeaders = append(state.DayHeaders, day)
	case ROW_LESSON:
		result := safeExtractLesson(o, row.Cells, state.CurrentDay)
		if result.Ok() {
			state.Lessons = append(state.Lessons, result.Lesson)
			break
		}
		state.Rejections = append(state.Rejections, Rejection{
			Row:    row.Index,
			Day:    state.CurrentDay,
			Cells:  row.Texts(),
			Reason: result.Rejected,
			Detail: result.Detail,
		})
	}
	return state
}

// foldRows walks the rows of a table in document order.
func foldRows(o Options, rows []Row) tableState {
	state := tableState{Lessons: []Lesson{}}
	for _, row := range rows {
		state = foldRow(o, state, row)
	}
	return state
}
