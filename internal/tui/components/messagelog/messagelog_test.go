package messagelog

import (
	"fmt"
	"strings"
	"testing"
)

func TestAppend(t *testing.T) {
	m := New(40, 5)
	if !strings.Contains(m.View(), "Nothing has happened yet.") {
		t.Errorf("empty View() = %q", m.View())
	}

	m.Append("Started Floss", "", "  ", "Gold: +20")
	if got := m.Lines(); len(got) != 2 {
		t.Fatalf("Lines() = %q, blank lines should be skipped", got)
	}
	if m.Last() != "Gold: +20" {
		t.Errorf("Last() = %q", m.Last())
	}
	if !strings.Contains(m.View(), "Gold: +20") {
		t.Errorf("View() should scroll to the newest line: %q", m.View())
	}
}

func TestAppendTrims(t *testing.T) {
	m := New(40, 5)
	for i := 0; i < MaxLines+25; i++ {
		m.Append(fmt.Sprintf("line %d", i))
	}
	lines := m.Lines()
	if len(lines) != MaxLines {
		t.Fatalf("len(Lines()) = %d, want %d", len(lines), MaxLines)
	}
	if lines[0] != "line 25" {
		t.Errorf("oldest line = %q, want line 25", lines[0])
	}
}
