//go:build profile

package profiler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDumpBalancesScopes(t *testing.T) {
	Init(64)

	end := Start("tick")
	Start("render")() // closed immediately
	unclosed := Start("encode")
	_ = unclosed
	end() // mismatched close: encode is still open, so this is skipped

	path := filepath.Join(t.TempDir(), "capture.speedscope.json")
	if err := Dump(path); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc speedscopeFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Profiles) != 1 {
		t.Fatalf("profiles = %d, want 1", len(doc.Profiles))
	}

	depth := 0
	for _, e := range doc.Profiles[0].Events {
		switch e.Type {
		case "O":
			depth++
		case "C":
			depth--
		}
		if depth < 0 {
			t.Fatal("close before open")
		}
	}
	if depth != 0 {
		t.Errorf("unbalanced events, depth %d", depth)
	}
}
