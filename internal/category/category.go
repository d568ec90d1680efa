// Package category infers spending categories from merchant names.
package category

import "strings"

// Other is the fallback category for merchants no keyword matches.
const Other = "Other"

type keywordSet struct {
	name     string
	keywords []string
}

// keywordSets is ordered: the first matching set wins, so more specific
// categories must come before broader ones.
var keywordSets = []keywordSet{
	{"Groceries", []string{"bigbasket", "blinkit", "zepto", "dmart", "reliance fresh", "grocery", "blink commerce", "instamart"}},
	{"Dining", []string{"swiggy", "zomato", "restaurant", "cafe", "dominos", "pizza", "kfc", "mcdonald", "bistro"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio", "nykaa", "meesho", "westside", "pantaloons", "fashnear", "savana"}},
	{"Transport", []string{"uber", "ola", "rapido", "metro", "petrol", "fuel", "indian oil"}},
	{"Bills & Utilities", []string{"electricity", "airtel", "jio", "vodafone", "broadband", "gas", "water"}},
	{"Entertainment", []string{"netflix", "prime", "spotify", "bookmyshow", "pvr", "hotstar", "cinema", "district"}},
	{"Travel", []string{"irctc", "makemytrip", "goibibo", "cleartrip", "hotel", "flight", "booking"}},
	{"Health", []string{"pharmacy", "apollo", "medplus", "hospital", "clinic", "doctor"}},
}

// Categorize returns the category for a merchant. An issuer-supplied
// category always wins over keyword inference.
func Categorize(merchant, issuerCategory string) string {
	if issuerCategory != "" {
		return issuerCategory
	}
	lower := strings.ToLower(merchant)
	if strings.TrimSpace(lower) == "" {
		return Other
	}
	for _, set := range keywordSets {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.name
			}
		}
	}
	return Other
}

// Names returns all known category names, inference order first, then Other.
func Names() []string {
	names := make([]string, 0, len(keywordSets)+1)
	for _, set := range keywordSets {
		names = append(names, set.name)
	}
	return append(names, Other)
}
