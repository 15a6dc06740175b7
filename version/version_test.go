package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetUsesLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "v1.2.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "v1.2.0" {
		t.Errorf("expected 'v1.2.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected build year 2026, got %d", info.BuildDate.Year())
	}
}

func TestGetIgnoresBadBuildTime(t *testing.T) {
	defer saveAndRestore()()
	BuildTime = "yesterday"
	GitCommit = "abc1234"

	info := Get()
	if info.GitCommit != "abc1234" {
		t.Errorf("expected ldflags commit to win, got %q", info.GitCommit)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want bool
	}{
		{"dev", Info{Version: "dev"}, false},
		{"tagged", Info{Version: "v1.0.0"}, true},
		{"dirty tree", Info{Version: "v1.0.0", Dirty: true}, false},
		{"dirty suffix", Info{Version: "v1.0.0-dirty"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.IsRelease(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "v1.0.0", GitCommit: "abc1234"}, "v1.0.0-abc1234"},
		{Info{Version: "v1.0.0", GitCommit: "abc1234", Dirty: true}, "v1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GitCommit: "abc1234",
		GoVersion: "go1.26.0",
		BuildDate: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	got := info.String()
	if got != "v1.0.0-abc1234 (built 2026-01-15T10:30:00Z, go1.26.0)" {
		t.Errorf("unexpected %q", got)
	}

	bare := Info{Version: "dev", GoVersion: "go1.26.0"}
	if !strings.HasSuffix(bare.String(), "(go1.26.0)") {
		t.Errorf("expected toolchain suffix, got %q", bare.String())
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 7 characters, got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("expected unchanged, got %q", got)
	}
}
