package nhtk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLessonNumberForTime(t *testing.T) {
	cases := []struct {
		time   string
		number int
		ok     bool
	}{
		{time: "8:30–10:00", number: 1, ok: true},
		{time: "08:30–10:00", number: 1, ok: true},
		{time: "9:00–10:30", number: 1, ok: true},
		{time: "09:00–10:30", number: 1, ok: true},
		{time: "10:15–11:45", number: 2, ok: true},
		{time: "10:45–12:15", number: 2, ok: true},
		{time: "12:15–13:45", number: 3, ok: true},
		{time: "14:00–15:30", number: 4, ok: true},
		{time: "16:15–17:45", number: 5, ok: true},
		{time: "18:00–19:30", number: 6, ok: true},
		{time: "19:00–20:00", ok: false},
		{time: "", ok: false},
	}

	for _, test := range cases {
		number, ok := lessonNumberForTime(test.time)
		require.Equal(t, test.ok, ok, test.time)
		require.Equal(t, test.number, number, test.time)
	}
}
