package nhtk

type DaySummary struct {
	Day     string `json:"day"`
	Lessons int    `json:"lessons"`
}

type Summary struct {
	Group        string       `json:"group"`
	Period       string       `json:"period"`
	TotalLessons int          `json:"total_lessons"`
	Days         []DaySummary `json:"days"`
}

// Summarize counts the lessons of a document per day, days keep their
// order of appearance.
func Summarize(doc Document) Summary {
	summary := Summary{
		Group:        doc.Metadata.Group,
		Period:       doc.Metadata.Period,
		TotalLessons: len(doc.Schedule),
	}

	index := map[string]int{}
	for _, lesson := range doc.Schedule {
		i, ok := index[lesson.Day]
		if !ok {
			i = len(summary.Days)
			index[lesson.Day] = i
			summary.Days = append(summary.Days, DaySummary{Day: lesson.Day})
		}
		summary.Days[i].Lessons++
	}
	return summary
}
