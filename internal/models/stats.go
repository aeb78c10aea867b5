package models

// WeekdayCount is the number of tasks completed on one day of the week.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// WeekdayTotal sums the counts of a weekday breakdown.
func WeekdayTotal(counts []WeekdayCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

// DayBucket is the number of tasks that took Days whole days to complete.
type DayBucket struct {
	Days  int `json:"days"`
	Count int `json:"count"`
}

// CompletionHistogram buckets completed tasks by days-to-complete.
// Buckets are dense over [1, max]; same-day completions are counted
// separately and never appear in Buckets.
type CompletionHistogram struct {
	Buckets []DayBucket `json:"buckets"`
	SameDay int         `json:"same_day"`
}

// Empty reports whether the histogram has nothing to chart.
func (h CompletionHistogram) Empty() bool {
	return len(h.Buckets) == 0
}
