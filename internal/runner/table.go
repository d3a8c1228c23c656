package runner

import (
	"fmt"
	"strings"

	"github.com/projectdiscovery/netsweep/pkg/sweep"
)

// maxCellWidth limits hostname and port cells; longer values are cut with
// an ellipsis marker.
const maxCellWidth = 30

var tableHeader = []string{"Address", "Hostname", "ResponseTime", "OpenPorts", "LastSeen"}

// renderTable formats records as a left-aligned text table. Records are
// expected pre-sorted by the engine.
func renderTable(records []*sweep.HostRecord) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Address,
			truncate(record.Hostname, maxCellWidth),
			fmt.Sprintf("%dms", record.ResponseTime.Milliseconds()),
			truncate(joinPorts(record.OpenPorts), maxCellWidth),
			record.LastSeen.Format("15:04:05"),
		})
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow(&sb, tableHeader, widths)
	separator := make([]string, len(widths))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}
	writeRow(&sb, separator, widths)
	for _, row := range rows {
		writeRow(&sb, row, widths)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeRow(sb *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		fmt.Fprintf(sb, "%-*s", widths[i], cell)
	}
	sb.WriteString("\n")
}

func joinPorts(ports []string) string {
	if len(ports) == 0 {
		return "None"
	}
	return strings.Join(ports, ", ")
}

// truncate cuts s at max bytes and appends an ellipsis marker.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
