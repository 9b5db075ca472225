package timing

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{61 * time.Minute, "01:01:00"},
		{25*time.Hour + 2*time.Second, "25:00:02"},
		{1500 * time.Millisecond, "00:00:01"},
	}
	for _, tc := range cases {
		if got := Clock(tc.in); got != tc.want {
			t.Fatalf("Clock(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRate(t *testing.T) {
	if got := Rate(10, 0); got != 0 {
		t.Fatalf("Rate over empty span = %v, want 0", got)
	}
	if got := Rate(10, 2*time.Second); got != 5 {
		t.Fatalf("Rate = %v, want 5", got)
	}
}
