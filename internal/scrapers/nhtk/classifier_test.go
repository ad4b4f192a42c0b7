package nhtk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func textRow(index int, texts ...string) Row {
	row := Row{Index: index}
	for i, text := range texts {
		row.Cells = append(row.Cells, Cell{Index: i, Text: text})
	}
	return row
}

func TestClassifyRow(t *testing.T) {
	cases := []struct {
		name    string
		row     Row
		haveDay bool
		kind    RowKind
		day     string
	}{
		{name: "no cells", row: Row{}, haveDay: true, kind: ROW_EMPTY},
		{name: "day header", row: textRow(0, "Понедельник, 9 сентября"), kind: ROW_DAY_HEADER, day: monday},
		{
			name: "day header with trailing text",
			row:  textRow(0, "Суббота, 14 сентября", "(дистанционно)"),
			kind: ROW_DAY_HEADER,
			day:  "Суббота, 14 сентября",
		},
		{name: "weekday not at start", row: textRow(0, "Занятия", "Понедельник, 9 сентября"), kind: ROW_SKIPPED},
		{name: "weekday without date", row: textRow(0, "Понедельник"), kind: ROW_SKIPPED},
		{name: "column header", row: textRow(0, "№", "Время", "Предмет", "Преподаватель", "Ауд."), haveDay: true, kind: ROW_COLUMN_HEADER},
		{name: "short column header", row: textRow(0, "Препод."), haveDay: true, kind: ROW_COLUMN_HEADER},
		{name: "lesson row", row: textRow(0, "1", "8:30–10:00", "Химия", "Иванов"), haveDay: true, kind: ROW_LESSON},
		{name: "lesson row before day", row: textRow(0, "1", "8:30–10:00", "Химия", "Иванов"), kind: ROW_SKIPPED},
		{name: "short row", row: textRow(0, "1", "8:30–10:00", "Химия"), haveDay: true, kind: ROW_SKIPPED},
	}

	for _, test := range cases {
		kind, day := classifyRow(test.row, test.haveDay)
		require.Equal(t, test.kind, kind, test.name)
		require.Equal(t, test.day, day, test.name)
	}
}

func TestFoldRows(t *testing.T) {
	rows := []Row{
		textRow(0, "1", "8:30–10:00", "До заголовка", "Иванов"),
		textRow(1, "Понедельник, 9 сентября"),
		textRow(2, "№", "Время", "Предмет", "Преподаватель", "Ауд."),
		textRow(3, "1", "8:30–10:00", "Химия", "Иванов", "204"),
		textRow(4, "2", "Перенос"),
		textRow(5, "3", "Перенос", "-", ""),
		textRow(6, "2", "10:15–11:45", "Физика", "Петров", "205"),
		textRow(7, "Вторник, 10 сентября"),
		textRow(8, "1", "8:30–10:00", "Биология", "Сидорова", "с/з"),
	}

	state := foldRows(DefaultOptions(), rows)

	require.Equal(t, []string{monday, tuesday}, state.DayHeaders)
	require.Equal(t, tuesday, state.CurrentDay)

	var subjects []string
	for _, lesson := range state.Lessons {
		subjects = append(subjects, lesson.Subject)
		require.NotEmpty(t, lesson.Time)
		require.NotEmpty(t, lesson.Subject)
		require.Contains(t, state.DayHeaders, lesson.Day)
	}
	require.Equal(t, []string{"Химия", "Физика", "Биология"}, subjects)
	require.Equal(t, monday, state.Lessons[1].Day)
	require.Equal(t, tuesday, state.Lessons[2].Day)

	require.Len(t, state.Rejections, 1)
	require.Equal(t, 5, state.Rejections[0].Row)
	require.Equal(t, REJECT_NO_TIME, state.Rejections[0].Reason)
	require.Equal(t, []string{"3", "Перенос", "-", ""}, state.Rejections[0].Cells)
}

func TestFoldRowDoesNotMutateInput(t *testing.T) {
	before := tableState{CurrentDay: monday, Lessons: []Lesson{}}
	after := foldRow(DefaultOptions(), before, textRow(0, "Вторник, 10 сентября"))

	require.Equal(t, monday, before.CurrentDay)
	require.Equal(t, tuesday, after.CurrentDay)
}
