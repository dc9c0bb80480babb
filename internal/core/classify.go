package core

import "strings"

// FallbackCategory is returned when no keyword matches a description.
const FallbackCategory = "Other"

// categoryKeywords maps expense categories to the keywords that suggest
// them. Kept as an ordered slice: the first matching category wins when a
// description matches keywords from more than one.
var categoryKeywords = []struct {
	Category string
	Keywords []string
}{
	{"Food", []string{"food", "restaurant", "zomato", "swiggy", "pizza", "burger", "meal", "lunch", "dinner", "breakfast"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "shopping", "purchase", "buy", "store", "mall", "clothes"}},
	{"Entertainment", []string{"movie", "netflix", "amazon prime", "disney", "hotstar", "theatre", "concert", "game"}},
	{"Transportation", []string{"uber", "ola", "taxi", "bus", "train", "metro", "fuel", "petrol", "diesel", "gas"}},
	{"Utilities", []string{"electricity", "water", "gas", "internet", "wifi", "broadband", "bill", "recharge"}},
	{"Healthcare", []string{"doctor", "hospital", "medicine", "medical", "health", "clinic", "pharmacy"}},
	{"Education", []string{"school", "college", "university", "course", "class", "tuition", "book", "stationery"}},
	{"Travel", []string{"hotel", "flight", "booking", "trip", "vacation", "holiday", "travel"}},
}

// Classify maps a free-text description to an expense category by keyword
// match. Matching is case-insensitive substring search in declared order;
// returns FallbackCategory when nothing matches.
func Classify(description string) string {
	description = strings.ToLower(description)

	for _, entry := range categoryKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(description, keyword) {
				return entry.Category
			}
		}
	}

	return FallbackCategory
}
