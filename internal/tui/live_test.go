package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestLiveRenderer_Throttles(t *testing.T) {
	s, err := testFactory()
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	r := NewLiveRenderer(&out, 1, "")
	s.AddObserver(r)

	for i := 0; i < 5; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if n := strings.Count(out.String(), clearScreen); n != 1 {
		t.Errorf("expected one frame at 1 fps, got %d", n)
	}
	if !strings.Contains(out.String(), "anchors=2 springs=1") {
		t.Errorf("frame footer missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "step 1") {
		t.Errorf("first frame should show the first step:\n%s", out.String())
	}
}

func TestLiveRenderer_Cursor(t *testing.T) {
	var out bytes.Buffer
	r := NewLiveRenderer(&out, 30, "")
	r.Start()
	r.Stop()
	if out.String() != hideCursor+showCursor {
		t.Errorf("unexpected cursor codes %q", out.String())
	}
}
