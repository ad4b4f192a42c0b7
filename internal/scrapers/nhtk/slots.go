package nhtk

import "strings"

// lesson slots start at one of two times depending on the building, both are
// kept as published.
var slotStartTimes = map[string]int{
	"8:30":  1,
	"9:00":  1,
	"10:15": 2,
	"10:45": 2,
	"12:15": 3,
	"12:45": 3,
	"14:00": 4,
	"14:30": 4,
	"15:45": 5,
	"16:15": 5,
	"17:30": 6,
	"18:00": 6,
}

// lessonNumberForTime maps the start of a "H:MM–H:MM" range to its slot number.
func lessonNumberForTime(timeRange string) (int, bool) {
	start, _, _ := strings.Cut(timeRange, "–")
	start = strings.TrimSpace(start)
	if len(start) == 5 && start[0] == '0' {
		start = start[1:]
	}
	number, ok := slotStartTimes[start]
	return number, ok
}
