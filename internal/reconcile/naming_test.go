package reconcile

import (
	"regexp"
	"strings"
	"testing"
)

func TestReplicaName_Format(t *testing.T) {
	name := replicaName("web")
	re := regexp.MustCompile(`^shepherd-web-[0-9a-f]{4}$`)
	if !re.MatchString(name) {
		t.Fatalf("replicaName() = %q, expected pattern %q", name, re.String())
	}
}

func TestReplicaName_UniqueAcrossCalls(t *testing.T) {
	first := replicaName("web")
	unique := false
	for range 8 {
		if next := replicaName("web"); next != first {
			unique = true
			break
		}
	}
	if !unique {
		t.Fatalf("expected random suffix to vary across calls, first=%q", first)
	}
}

func TestReplicaName_LengthBounded(t *testing.T) {
	longService := strings.Repeat("a", 300)

	name := replicaName(longService)
	if len(name) > replicaNameMaxLen {
		t.Fatalf("replicaName() length = %d, max %d", len(name), replicaNameMaxLen)
	}
}
