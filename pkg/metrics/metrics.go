// Package metrics computes the board grouping and the progress figures shown
// on the dashboard.
package metrics

import (
	"sort"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// OwnerLoad is the effort assigned to one owner, split by status.
type OwnerLoad struct {
	Owner    string               `json:"owner"`
	Points   map[model.Status]int `json:"points"`
	Total    int                  `json:"total"`
	Segments []Segment            `json:"segments"`
}

// Segment is one status slice of an owner's workload bar. Width is a
// percentage of the busiest owner's total.
type Segment struct {
	Status model.Status `json:"status"`
	Points int          `json:"points"`
	Width  float64      `json:"width"`
}

// StatusShare is one slice of the status distribution chart.
type StatusShare struct {
	Status  model.Status `json:"status"`
	Points  int          `json:"points"`
	Tasks   int          `json:"tasks"`
	Percent float64      `json:"percent"`
}

type Summary struct {
	Progress     float64       `json:"progress"`
	DonePoints   int           `json:"done_points"`
	TotalPoints  int           `json:"total_points"`
	Pending      int           `json:"pending"`
	Workload     []OwnerLoad   `json:"workload"`
	Distribution []StatusShare `json:"distribution"`
}

// Summarize computes the metrics panel for tasks. Tasks with an unknown
// status count towards the total and as pending.
func Summarize(tasks []model.Task) Summary {
	var s Summary
	loads := make(map[string]*OwnerLoad)
	shares := make(map[model.Status]*StatusShare, len(model.Statuses))
	for _, st := range model.Statuses {
		shares[st] = &StatusShare{Status: st}
	}

	for _, t := range tasks {
		s.TotalPoints += t.Effort
		if t.Status == model.DONE {
			s.DonePoints += t.Effort
		} else {
			s.Pending++
		}

		load, ok := loads[t.Owner]
		if !ok {
			load = &OwnerLoad{Owner: t.Owner, Points: make(map[model.Status]int)}
			loads[t.Owner] = load
		}
		load.Points[t.Status] += t.Effort
		load.Total += t.Effort

		if share, ok := shares[t.Status]; ok {
			share.Points += t.Effort
			share.Tasks++
		}
	}

	s.Progress = percent(s.DonePoints, s.TotalPoints)

	busiest := 0
	for _, l := range loads {
		busiest = max(busiest, l.Total)
	}
	s.Workload = make([]OwnerLoad, 0, len(loads))
	for _, l := range loads {
		l.Segments = make([]Segment, 0, len(model.Statuses))
		for _, st := range model.Statuses {
			l.Segments = append(l.Segments, Segment{Status: st, Points: l.Points[st], Width: percent(l.Points[st], busiest)})
		}
		s.Workload = append(s.Workload, *l)
	}
	sort.Slice(s.Workload, func(i, j int) bool { return s.Workload[i].Owner < s.Workload[j].Owner })

	s.Distribution = make([]StatusShare, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		share := shares[st]
		share.Percent = percent(share.Points, s.TotalPoints)
		s.Distribution = append(s.Distribution, *share)
	}
	return s
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Column is one lane of the board.
type Column struct {
	Status model.Status `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

// Board groups tasks into the three status lanes, keeping sheet order within
// a lane. Tasks with an unknown status are not placed.
func Board(tasks []model.Task) []Column {
	cols := make([]Column, len(model.Statuses))
	lane := make(map[model.Status]int, len(model.Statuses))
	for i, st := range model.Statuses {
		cols[i] = Column{Status: st, Tasks: []model.Task{}}
		lane[st] = i
	}
	for _, t := range tasks {
		if i, ok := lane[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}
