package monitor

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteSummary prints this run's journal as a table.
func (m *Monitor) WriteSummary(w io.Writer) error {
	rows, err := m.journal.Summary()
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No events recorded")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Time", "Event", "Message", "Sent", "Failed")
	for _, r := range rows {
		table.Append(
			r.Timestamp.Local().Format("15:04:05"),
			string(r.Type),
			r.Message,
			fmt.Sprintf("%d", r.Delivered),
			fmt.Sprintf("%d", r.Failed),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal events: %d\n", len(rows))
	return nil
}
