package tui

import (
	"path/filepath"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"
)

// historyLimit is the number of exports shown in the history table.
const historyLimit = 50

// refreshHistory loads recent exports into the table. It reports false
// when there is nothing to show.
func (m *Model) refreshHistory() bool {
	if m.history == nil {
		m.status = "no history database (see --db)"
		return false
	}
	exports, err := m.history.Exports(historyLimit)
	if err != nil {
		m.status = "history error: " + err.Error()
		return false
	}
	if len(exports) == 0 {
		m.status = "no exports yet"
		return false
	}
	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "when", Width: 16},
		{Title: "image", Width: 20},
		{Title: "output", Width: 24},
		{Title: "frames", Width: 6},
		{Title: "skipped", Width: 7},
		{Title: "delay", Width: 5},
	}
	rows := make([]table.Row, 0, len(exports))
	for _, e := range exports {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.Created.Format("2006-01-02 15:04"),
			filepath.Base(e.Image),
			filepath.Base(e.Output),
			strconv.Itoa(e.Frames),
			strconv.Itoa(e.Skipped),
			strconv.Itoa(e.DelayMS),
		})
	}
	// clear rows first so the table never renders rows wider than its columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
	return true
}
