package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredKeepsComponents(t *testing.T) {
	orig := Version
	origNoColor := color.NoColor
	t.Cleanup(func() {
		Version = orig
		color.NoColor = origNoColor
	})
	color.NoColor = true

	cases := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"2.0.0+build.7", "2.0.0+build.7"},
		{"nightly", "nightly"},
	}
	for _, tc := range cases {
		Version = tc.in
		if got := Colored(); got != tc.want {
			t.Errorf("Colored() with %q = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultVersion(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
}
