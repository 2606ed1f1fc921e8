package user

import "testing"

func TestClampTimeout(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, TimeoutMinutesDefault},
		{-3, TimeoutMinutesMin},
		{1, 1},
		{30, 30},
		{60, 60},
		{61, TimeoutMinutesMax},
	}
	for _, c := range cases {
		if got := ClampTimeout(c.in); got != c.want {
			t.Errorf("ClampTimeout(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
