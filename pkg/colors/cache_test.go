package colors

import (
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

func TestStatusColors(t *testing.T) {
	if Status(model.TODO) != "#ef553b" || Status(model.IN_PROGRESS) != "#fca311" || Status(model.DONE) != "#00cc96" {
		t.Error("unexpected status colours")
	}
	if Status("Bloqueado") != Unassigned {
		t.Error("unknown status should be unassigned")
	}
}

func TestOwnerPaletteStableAndRecycled(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewOwnerPalette([]string{"red", "green"})
	p.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	ana := p.Color("Ana")
	luis := p.Color("Luis")
	if ana != "red" || luis != "green" {
		t.Fatalf("unexpected initial colours %s, %s", ana, luis)
	}
	if p.Color("Ana") != "red" {
		t.Error("colour must be stable for a known owner")
	}

	// Luis is now least recently used
	if got := p.Color("Sofía"); got != "green" {
		t.Errorf("expected Sofía to recycle green, got %s", got)
	}
	if got := p.Color("Luis"); got != "red" {
		t.Errorf("expected Luis to recycle Ana's red, got %s", got)
	}
	if p.Color("") != Unassigned {
		t.Error("empty owner should be unassigned")
	}
}
