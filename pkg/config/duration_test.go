package config

import (
	"testing"
	"time"
)

func TestDurationUnmarshalText(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30s", 30 * time.Second, true},
		{"5m", 5 * time.Minute, true},
		{"100ms", 100 * time.Millisecond, true},
		{"", 0, true},
		{"-3s", 0, false},
		{"soon", 0, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(c.in))
			if c.ok != (err == nil) {
				t.Fatalf("err = %v", err)
			}
			if c.ok && d.Duration != c.want {
				t.Errorf("got %v, want %v", d.Duration, c.want)
			}
		})
	}
}

func TestDurationOr(t *testing.T) {
	if got := (Duration{}).Or(5 * time.Second); got != 5*time.Second {
		t.Errorf("unset Or = %v", got)
	}
	if got := (Duration{2 * time.Second}).Or(5 * time.Second); got != 2*time.Second {
		t.Errorf("set Or = %v", got)
	}
}
