package nhtk

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestFindGroup(t *testing.T) {
	require.Equal(t, "09.07.13п1", findGroup([]string{"Расписание", "  Группа 09.07.13п1  "}))
	require.Equal(t, "15.02.01", findGroup([]string{"Группа 15.02.01"}))
	require.Equal(t, "", findGroup([]string{"Группа студентов"}))
	require.Equal(t, "", findGroup(nil))
}

func TestFindPeriod(t *testing.T) {
	cases := []struct {
		texts    []string
		expected string
	}{
		{
			texts:    []string{"Группа 1", " Расписание занятий на 2 семестр 2024 г. "},
			expected: "Расписание занятий на 2 семестр 2024 г.",
		},
		{
			texts:    []string{"с 9 сентября — 15 сентября 2024"},
			expected: "с 9 сентября — 15 сентября 2024",
		},
		{
			// the first node that matches either pattern wins
			texts:    []string{"9 сентября — 15 сентября 2024", "Расписание занятий на 2025 г."},
			expected: "9 сентября — 15 сентября 2024",
		},
		{
			texts:    []string{"расписание ЗАНЯТИЙ 2024г"},
			expected: "расписание ЗАНЯТИЙ 2024г",
		},
		{
			texts:    []string{"9 сентября - 15 сентября 2024", "Расписание"},
			expected: "",
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, findPeriod(test.texts))
	}
}

func TestParseMetadata(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div>
		<span>Группа</span> <b>09.07.13п1</b>
		<p>Группа 09.07.13п1</p>
	</div>`))
	if err != nil {
		t.Fatal(err)
	}

	group, period := parseMetadata(doc)
	require.Equal(t, "09.07.13п1", group)
	require.Equal(t, "", period)
}
