package extractor

import "testing"

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{
			name: "clean statement text",
			pages: []string{
				"AXIS BANK CREDIT CARD STATEMENT\nTotal Amount Due: 12,345.00\n09 Dec '25 FLIPKART PAYMENTS 534.00 Debit",
			},
			want: true,
		},
		{
			name:  "too short",
			pages: []string{"statement"},
			want:  false,
		},
		{
			name: "binary garbage",
			pages: []string{
				"\x01\x02ÿþýü\x05\x06ÿþýü\x07\x08ÿþýü\x01\x02ÿþýü\x03\x04ÿþýü\x05\x06ÿþýü\x07\x08ÿþýü\x01\x02ÿþýüÿþýüÿþýü",
			},
			want: false,
		},
		{
			name: "readable but no statement vocabulary",
			pages: []string{
				"the quick brown fox jumps over the lazy dog again and again and again and again",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadableText(tt.pages); got != tt.want {
				t.Errorf("IsReadableText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextQuality(t *testing.T) {
	if q := textQuality([]string{"Total Amount Due 1,234.00"}); q < 0.95 {
		t.Errorf("clean text quality = %f, want >= 0.95", q)
	}
	if q := textQuality(nil); q != 0 {
		t.Errorf("empty quality = %f, want 0", q)
	}
}
