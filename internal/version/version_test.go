package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestSummary(t *testing.T) {
	got := Summary()

	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("Summary() has %d lines, want 5:\n%s", len(lines), got)
	}
	if lines[0] == "" {
		t.Error("release line is empty")
	}
	if !strings.Contains(got, "Go: "+runtime.Version()) {
		t.Errorf("Summary() lacks toolchain version:\n%s", got)
	}
	if !strings.Contains(got, "OS/Arch: "+runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Summary() lacks platform:\n%s", got)
	}
	if !strings.Contains(got, "Commit: ") || !strings.Contains(got, "Built: ") {
		t.Errorf("Summary() lacks VCS lines:\n%s", got)
	}
}
