package trends

import (
	"fmt"
	"strings"
)

// Format renders a Result as aligned terminal output.
func Format(r Result) string {
	if r.Runs == 0 {
		return fmt.Sprintf("hicqc history\n\n  No recorded runs for %s. Run `hicqc analyze` first.\n", r.MatrixPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "hicqc history — %s (%d runs)\n", r.MatrixPath, r.Runs)

	b.WriteString("\nOverview\n")
	for _, m := range r.Metrics {
		detail := ""
		if m.Direction != DirStable && m.DeltaPct != 0 {
			detail = fmt.Sprintf(" (%+.0f%%)", m.DeltaPct)
		}
		fmt.Fprintf(&b, "  %-16s %9.2f latest  %9.2f avg  %s %s%s\n",
			m.Name, m.Latest, m.OverallAvg, directionArrow(m.Direction), m.Direction, detail)
	}

	for _, m := range r.Metrics {
		if len(m.Points) < 2 {
			continue
		}
		fmt.Fprintf(&b, "\n%s by run\n", m.Name)
		fmt.Fprintf(&b, "  %-8s %9s %9s\n", "Run", "Value", "Avg")
		for _, p := range m.Points {
			avgStr := ""
			if p.RollingAvg != 0 {
				avgStr = fmt.Sprintf("%9.2f", p.RollingAvg)
			}
			fmt.Fprintf(&b, "  #%-7d %9.2f %9s\n", p.RunID, p.Value, avgStr)
		}
	}

	return b.String()
}

func directionArrow(dir string) string {
	switch dir {
	case DirImproving:
		return "↑"
	case DirWorsening:
		return "↓"
	default:
		return "→"
	}
}
