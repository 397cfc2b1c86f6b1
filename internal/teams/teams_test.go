package teams

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"São Paulo", "sao paulo"},
		{"Grêmio", "gremio"},
		{"Kansas City  Chiefs", "kansas city chiefs"},
		{"  Buffalo Bills ", "buffalo bills"},
		{"ATLÉTICO MINEIRO", "atletico mineiro"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"São Paulo", "sao paulo", true},
		{"Kansas City Chiefs", "kansas  city chiefs", true},
		{"Buffalo Bills", "Miami Dolphins", false},
		{"", "", true},
	}
	for _, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
