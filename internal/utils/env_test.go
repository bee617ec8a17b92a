package utils

import "testing"

func TestGetEnv(t *testing.T) {
	if got := GetEnv("FOODENOUGH_TEST_UNSET", "fallback", nil); got != "fallback" {
		t.Fatalf("unset: want=fallback got=%q", got)
	}
	t.Setenv("FOODENOUGH_TEST_STR", "value")
	if got := GetEnv("FOODENOUGH_TEST_STR", "fallback", nil); got != "value" {
		t.Fatalf("set: want=value got=%q", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	if got := GetEnvAsInt("FOODENOUGH_TEST_UNSET", 42, nil); got != 42 {
		t.Fatalf("unset: want=42 got=%d", got)
	}
	t.Setenv("FOODENOUGH_TEST_INT", " 7 ")
	if got := GetEnvAsInt("FOODENOUGH_TEST_INT", 42, nil); got != 7 {
		t.Fatalf("set: want=7 got=%d", got)
	}
	t.Setenv("FOODENOUGH_TEST_INT", "not-a-number")
	if got := GetEnvAsInt("FOODENOUGH_TEST_INT", 42, nil); got != 42 {
		t.Fatalf("garbage: want=42 got=%d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	if got := GetEnvAsBool("FOODENOUGH_TEST_UNSET", true, nil); !got {
		t.Fatalf("unset: want=true")
	}
	cases := []struct {
		raw  string
		want bool
	}{
		{"1", true}, {"true", true}, {"YES", true}, {"on", true},
		{"0", false}, {"false", false}, {"No", false}, {"off", false},
		{"maybe", true}, // unparseable falls back to the default
	}
	for _, tc := range cases {
		t.Setenv("FOODENOUGH_TEST_BOOL", tc.raw)
		if got := GetEnvAsBool("FOODENOUGH_TEST_BOOL", true, nil); got != tc.want {
			t.Fatalf("%q: want=%v got=%v", tc.raw, tc.want, got)
		}
	}
}
