package core

import "sort"

// GroupingMode controls how the browsing list is sectioned.
type GroupingMode int

const (
	ByCategory GroupingMode = iota
	ByDate
)

// Toggle flips between the two modes.
func (m GroupingMode) Toggle() GroupingMode {
	if m == ByCategory {
		return ByDate
	}
	return ByCategory
}

func (m GroupingMode) String() string {
	if m == ByDate {
		return "by_date"
	}
	return "by_category"
}

// DisplayItem is one element of the sectioned browsing list: either a section
// header or an expense row. Exactly one of the two views is meaningful,
// discriminated by IsHeader.
type DisplayItem struct {
	IsHeader bool
	Header   string
	Expense  Expense
}

func headerItem(title string) DisplayItem {
	return DisplayItem{IsHeader: true, Header: title}
}

func rowItem(e Expense) DisplayItem {
	return DisplayItem{Expense: e}
}

// BuildDisplayList flattens the expense list into header/row items.
//
// The input is first sorted by date descending (stable, so same-date rows keep
// their newest-first id order). BY_CATEGORY then orders the groups by category
// name ascending while rows inside each group stay date-descending; BY_DATE
// keeps groups in first-appearance order, i.e. newest date first. An empty
// category or date is a valid group and renders with an empty header.
func BuildDisplayList(expenses []Expense, mode GroupingMode) []DisplayItem {
	sorted := make([]Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	var keyOf func(Expense) string
	switch mode {
	case ByDate:
		keyOf = func(e Expense) string { return e.Date }
	default:
		keyOf = func(e Expense) string { return e.Category }
	}

	groups := make(map[string][]Expense)
	order := make([]string, 0)
	for _, e := range sorted {
		key := keyOf(e)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	if mode == ByCategory {
		sort.Strings(order)
	}

	items := make([]DisplayItem, 0, len(sorted)+len(order))
	for _, key := range order {
		items = append(items, headerItem(key))
		for _, e := range groups[key] {
			items = append(items, rowItem(e))
		}
	}
	return items
}
