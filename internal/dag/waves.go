package dag

import (
	"fmt"
	"strings"
)

// Wave holds features whose dependencies all sit in earlier waves, in
// insertion order.
type Wave []string

// Layout is the graph split into waves. Wave i holds every node whose
// longest dependency chain to a root has i edges.
type Layout struct {
	Waves []Wave

	g     *DependencyGraph
	index map[string]int // id -> 0-based wave
}

// Layout computes the waves of g.
func (g *DependencyGraph) Layout() (*Layout, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("computing waves: %w", err)
	}

	l := &Layout{Waves: []Wave{}, g: g, index: make(map[string]int, len(order))}
	for _, id := range order {
		depth := 0
		for _, dep := range g.nodes[id].Dependencies {
			depth = max(depth, l.index[dep]+1)
		}
		l.index[id] = depth
	}
	for _, id := range g.order {
		d := l.index[id]
		for len(l.Waves) <= d {
			l.Waves = append(l.Waves, Wave{})
		}
		l.Waves[d] = append(l.Waves[d], id)
	}
	return l, nil
}

// WaveOf returns the 1-based wave of id, or 0 when id is not in the graph.
func (l *Layout) WaveOf(id string) int {
	if d, ok := l.index[id]; ok {
		return d + 1
	}
	return 0
}

// WaveStats summarizes a layout.
type WaveStats struct {
	Waves    int
	Features int
	Largest  int
	Smallest int
	Active   int
	Skipped  int
}

// Mean returns the average wave size.
func (s WaveStats) Mean() float64 {
	if s.Waves == 0 {
		return 0
	}
	return float64(s.Features) / float64(s.Waves)
}

// Stats counts waves, features and node statuses.
func (l *Layout) Stats() WaveStats {
	var s WaveStats
	for i, w := range l.Waves {
		s.Waves++
		s.Features += len(w)
		s.Largest = max(s.Largest, len(w))
		if i == 0 || len(w) < s.Smallest {
			s.Smallest = len(w)
		}
		for _, id := range w {
			switch l.g.nodes[id].Status {
			case StatusActive:
				s.Active++
			case StatusSkipped:
				s.Skipped++
			}
		}
	}
	return s
}

// marks are ASCII so the output survives any terminal or log.
var marks = map[NodeStatus]string{
	StatusPending: "[ ]",
	StatusActive:  "[+]",
	StatusSkipped: "[-]",
}

// Tree renders one block per wave, each feature marked with its status.
func (l *Layout) Tree() string {
	if len(l.Waves) == 0 {
		return "No features.\n"
	}

	var sb strings.Builder
	for i, w := range l.Waves {
		fmt.Fprintf(&sb, "Wave %d (%s)", i+1, plural(len(w), "feature"))
		if i > 0 {
			fmt.Fprintf(&sb, " after wave %d", i)
		}
		sb.WriteString("\n")
		for _, id := range w {
			fmt.Fprintf(&sb, "  %s %s\n", marks[l.g.nodes[id].Status], id)
		}
	}

	s := l.Stats()
	fmt.Fprintf(&sb, "\n%s, %s", plural(s.Waves, "wave"), plural(s.Features, "feature"))
	if s.Active+s.Skipped > 0 {
		fmt.Fprintf(&sb, ": %d active, %d skipped", s.Active, s.Skipped)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Line renders the layout on a single line, waves separated by " -> ".
func (l *Layout) Line() string {
	parts := make([]string, len(l.Waves))
	for i, w := range l.Waves {
		parts[i] = fmt.Sprintf("%d:%s", i+1, strings.Join(w, ","))
	}
	return strings.Join(parts, " -> ")
}

// Detail lists every feature with its wave, status and edges.
func (l *Layout) Detail() string {
	var sb strings.Builder
	for i, w := range l.Waves {
		for _, id := range w {
			n := l.g.nodes[id]
			fmt.Fprintf(&sb, "%s (wave %d, %s)\n", id, i+1, strings.ToLower(n.Status.String()))
			if len(n.Dependencies) > 0 {
				fmt.Fprintf(&sb, "  needs:     %s\n", strings.Join(n.Dependencies, ", "))
			}
			if len(n.Dependents) > 0 {
				fmt.Fprintf(&sb, "  needed by: %s\n", strings.Join(n.Dependents, ", "))
			}
		}
	}
	return sb.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
