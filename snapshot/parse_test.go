package snapshot

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 12,90", 12.90},
		{"R$ 7,45", 7.45},
		{"€1.234,56", 1234.56},
		{"$1,234.56", 1234.56},
		{"3.50", 3.50},
		{"3,5", 3.5},
		{"1.234", 1234},
		{"1,234", 1234},
		{"0,00", 0},
		{"R$ 1.299,00", 1299.00},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		if err != nil {
			t.Errorf("ParseMoney(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseMoney(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "Produto", "R$"} {
		if _, err := ParseMoney(in); err == nil {
			t.Errorf("ParseMoney(%q): expected error", in)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"x2", 2},
		{"2", 2},
		{"Qtd: 3", 3},
		{"12 un", 12},
		{"x0", 0},
	}
	for _, c := range cases {
		got, err := ParseQuantity(c.in)
		if err != nil {
			t.Errorf("ParseQuantity(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if _, err := ParseQuantity("sem estoque"); err == nil {
		t.Error("expected error for text without digits")
	}
}

func TestParseCount(t *testing.T) {
	got, err := ParseCount("38 Produtos")
	if err != nil || got != 38 {
		t.Fatalf("ParseCount: got %d, %v", got, err)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{4.499999999, 4.5},
		{4.504, 4.5},
		{4.506, 4.51},
		{-1.005, -1},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
