package fingerprint

import (
	"regexp"
	"testing"

	"nhtk-schedule/internal/scrapers/nhtk"

	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{32}$`)

func one() *int {
	n := 1
	return &n
}

func testLessons() []nhtk.Lesson {
	return []nhtk.Lesson{
		{
			Day:          "Понедельник, 9 сентября",
			LessonNumber: one(),
			Time:         "8:30–10:00",
			Subject:      "Математика",
			Teacher:      "Иванов И.И.",
			Room:         "204",
			Subgroup:     "2 п/г",
		},
		{
			Day:     "Понедельник, 9 сентября",
			Time:    "10:15–11:45",
			Subject: "Физика",
			Room:    "с/з",
		},
	}
}

func TestCanonicalize(t *testing.T) {
	out, err := Canonicalize([]byte(`{ "b": [3, 1, {"z": null, "a": "<x>"}], "a": 1.50 }`))
	require.NoError(t, err)
	require.Equal(t, `{"a":1.50,"b":[3,1,{"a":"<x>","z":null}]}`, string(out))

	_, err = Canonicalize([]byte(`{"a":`))
	require.Error(t, err)
}

func TestJSONIgnoresKeyOrder(t *testing.T) {
	first, err := JSON([]byte(`[{"day":"Пн","time":"8:30–10:00","lesson_number":1}]`))
	require.NoError(t, err)
	second, err := JSON([]byte(`[ {"lesson_number": 1, "time": "8:30–10:00", "day": "Пн"} ]`))
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Regexp(t, hexDigest, first)
}

func TestLessons(t *testing.T) {
	lessons := testLessons()

	hash, err := Lessons(lessons)
	require.NoError(t, err)
	require.Regexp(t, hexDigest, hash)

	again, err := Lessons(testLessons())
	require.NoError(t, err)
	require.Equal(t, hash, again)

	reordered := []nhtk.Lesson{lessons[1], lessons[0]}
	swapped, err := Lessons(reordered)
	require.NoError(t, err)
	require.NotEqual(t, hash, swapped)

	changed := testLessons()
	changed[1].Room = "205"
	edited, err := Lessons(changed)
	require.NoError(t, err)
	require.NotEqual(t, hash, edited)
}
