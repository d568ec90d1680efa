package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name           string
		merchant       string
		issuerCategory string
		want           string
	}{
		{"grocery keyword", "BLINKIT BANGALORE", "", "Groceries"},
		{"dining keyword", "Zomato Ltd Gurgaon", "", "Dining"},
		{"shopping keyword", "FLIPKART PAYMENTS,BANGALORE", "", "Shopping"},
		{"transport keyword", "UBER INDIA SYSTEMS", "", "Transport"},
		{"entertainment keyword", "NETFLIX.COM", "", "Entertainment"},
		{"travel keyword", "IRCTC CF MUMBAI", "", "Travel"},
		{"health keyword", "APOLLO PHARMACY", "", "Health"},
		{"no match", "SOME RANDOM SHOP", "", Other},
		{"empty merchant", "", "", Other},
		{"issuer category wins", "FLIPKART PAYMENTS", "Apparels", "Apparels"},
		{"case insensitive", "SwIgGy InStAmArT", "", "Groceries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.merchant, tt.issuerCategory))
		})
	}
}

func TestNamesIncludesOther(t *testing.T) {
	names := Names()
	assert.NotEmpty(t, names)
	assert.Equal(t, Other, names[len(names)-1])
}
