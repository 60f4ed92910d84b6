package convert

import "testing"

func TestClampJobCount(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-2, 1},
		{0, 1},
		{1, 1},
		{8, 8},
	}
	for _, c := range cases {
		if got := clampJobCount(c.in); got != c.want {
			t.Errorf("clampJobCount(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
