package orderbook

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want Price
		ok   bool
	}{
		{"10.00", 1000, true},
		{"10.5", 1050, true},
		{"10.25", 1025, true},
		{"0", MarketPrice, true},
		{"0.01", 1, true},
		{"7", 700, true},
		{".50", 50, true},
		{"10.255", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, err := ParsePrice(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParsePrice(%q) succeeded, want error", c.in)
		}
	}
}

func TestPriceString(t *testing.T) {
	if s := Price(1025).String(); s != "10.25" {
		t.Errorf("Price(1025) = %q, want 10.25", s)
	}
	if s := Price(1005).String(); s != "10.05" {
		t.Errorf("Price(1005) = %q, want 10.05", s)
	}
	if !MarketPrice.IsMarket() || Price(1).IsMarket() {
		t.Error("market sentinel detection wrong")
	}
}
