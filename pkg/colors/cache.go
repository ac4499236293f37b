package colors

import (
	"sync"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Unassigned is used for tasks without an owner or with an unknown status.
const Unassigned = "#9e9e9e"

var statusColors = map[model.Status]string{
	model.TODO:        "#ef553b",
	model.IN_PROGRESS: "#fca311",
	model.DONE:        "#00cc96",
}

// Status returns the chart colour of a status.
func Status(s model.Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return Unassigned
}

// DefaultPalette is the set of colours handed out to owners.
var DefaultPalette = []string{
	"#636efa", "#ab63fa", "#19d3f3", "#ff6692", "#b6e880",
	"#ff97ff", "#fecb52", "#1f77b4", "#8c564b", "#17becf", "#bcbd22",
}

type ownerState struct {
	color    string
	lastUsed time.Time
}

// OwnerPalette assigns a stable colour to each owner. When every colour is
// taken, the least recently used owner gives up its colour.
type OwnerPalette struct {
	palette []string
	owners  map[string]*ownerState
	mu      sync.Mutex
	now     func() time.Time
}

func NewOwnerPalette(palette []string) *OwnerPalette {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &OwnerPalette{
		palette: palette,
		owners:  make(map[string]*ownerState),
		now:     time.Now,
	}
}

// Color returns the colour of owner, assigning one if needed.
func (p *OwnerPalette) Color(owner string) string {
	if owner == "" {
		return Unassigned
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, exists := p.owners[owner]; exists {
		state.lastUsed = p.now()
		return state.color
	}
	return p.assign(owner)
}

func (p *OwnerPalette) assign(owner string) string {
	used := make(map[string]bool, len(p.owners))
	for _, s := range p.owners {
		used[s.color] = true
	}

	for _, c := range p.palette {
		if !used[c] {
			p.owners[owner] = &ownerState{color: c, lastUsed: p.now()}
			return c
		}
	}

	// palette full: recycle the oldest owner's colour
	var oldestOwner string
	var oldestTime time.Time
	first := true
	for o, s := range p.owners {
		if first || s.lastUsed.Before(oldestTime) {
			oldestTime = s.lastUsed
			oldestOwner = o
			first = false
		}
	}

	recycled := p.owners[oldestOwner].color
	delete(p.owners, oldestOwner)
	p.owners[owner] = &ownerState{color: recycled, lastUsed: p.now()}
	return recycled
}
