package tui

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mchughj/PixelArt/internal/frames"
	"github.com/mchughj/PixelArt/internal/store"
)

// export dialog fields, in focus order
const (
	fieldStrideX = iota
	fieldStrideY
	fieldFrames
	fieldDelay
	fieldColumns
	fieldOutput
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"stride x  ",
	"stride y  ",
	"frames    ",
	"delay ms  ",
	"columns   ",
	"output    ",
}

type exportDoneMsg struct {
	req frames.Request
	res frames.Result
	err error
}

// openExport builds a request from a snapshot of the current view and
// fills the dialog with its defaults.
func (m *Model) openExport() tea.Cmd {
	snap, err := m.ctl.Snapshot()
	if err != nil {
		m.status = "export: " + err.Error()
		return nil
	}
	m.req = frames.NewRequest(snap)
	values := [fieldCount]string{
		strconv.Itoa(m.req.StrideX),
		strconv.Itoa(m.req.StrideY),
		strconv.Itoa(m.req.FrameCount),
		strconv.Itoa(m.req.DelayMS),
		strconv.Itoa(m.req.Columns),
		m.req.Output,
	}
	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = fieldLabels[i]
		ti.SetValue(values[i])
		if i == fieldOutput {
			ti.Width = 48
		} else {
			ti.CharLimit = 6
			ti.Width = 8
		}
		m.inputs[i] = ti
	}
	m.focus = 0
	m.mode = modeExport
	m.status = fmt.Sprintf("export from %d,%d: tab next field, enter start, esc cancel", m.req.StartX, m.req.StartY)
	return m.inputs[0].Focus()
}

func (m *Model) focusField(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (i + fieldCount) % fieldCount
	return m.inputs[m.focus].Focus()
}

// requestFromInputs applies the dialog values to the pending request.
func (m *Model) requestFromInputs() (frames.Request, error) {
	r := m.req
	ints := []struct {
		field int
		dst   *int
	}{
		{fieldStrideX, &r.StrideX},
		{fieldStrideY, &r.StrideY},
		{fieldFrames, &r.FrameCount},
		{fieldDelay, &r.DelayMS},
		{fieldColumns, &r.Columns},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(m.inputs[f.field].Value()))
		if err != nil {
			return r, fmt.Errorf("%s: not a number", strings.TrimSpace(fieldLabels[f.field]))
		}
		*f.dst = v
	}
	r.Output = strings.TrimSpace(m.inputs[fieldOutput].Value())
	return r, r.Validate()
}

func (m Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeView
		m.status = "export cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusField(m.focus + 1)
	case "shift+tab", "up":
		return m, m.focusField(m.focus - 1)
	case "enter":
		req, err := m.requestFromInputs()
		if err != nil {
			m.status = "export: " + err.Error()
			return m, nil
		}
		m.req = req
		m.mode = modeView
		m.exporting = true
		m.status = fmt.Sprintf("exporting %d frames to %s ...", req.FrameCount, req.Output)
		return m, runExport(req, m.logger)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// runExport encodes req off the update loop.
func runExport(req frames.Request, logger *log.Logger) tea.Cmd {
	return func() tea.Msg {
		res, err := frames.Export(context.Background(), req, logger)
		return exportDoneMsg{req: req, res: res, err: err}
	}
}

func (m *Model) exportDone(msg exportDoneMsg) {
	m.exporting = false
	if msg.err != nil {
		m.status = "export failed: " + msg.err.Error()
		return
	}
	m.status = fmt.Sprintf("wrote %d frames to %s", msg.res.Frames, filepath.Base(msg.res.Output))
	if n := len(msg.res.Skipped); n > 0 {
		m.status += fmt.Sprintf(" (%d out of bounds skipped)", n)
	}
	if m.history == nil {
		return
	}
	err := m.history.RecordExport(store.Export{
		Image:   msg.req.Snapshot.Path,
		Output:  msg.res.Output,
		Frames:  msg.res.Frames,
		Skipped: len(msg.res.Skipped),
		DelayMS: msg.req.DelayMS,
	})
	if err != nil {
		m.logger.Printf("record export: %v", err)
	}
}
