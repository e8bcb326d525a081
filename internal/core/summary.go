package core

// DailyTotal is one bar of the rolling 7-day report: the 3-letter weekday
// label and the amount spent that day (0 when nothing was recorded).
type DailyTotal struct {
	DayOfWeek string
	Total     float64
}

// CategoryTotal is an amount summed over one distinct category value.
// Expenses recorded without a category land in the "" group.
type CategoryTotal struct {
	Category string
	Total    float64
}
