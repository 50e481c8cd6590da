package tui

import (
	"errors"
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mchughj/PixelArt/internal/geom"
	"github.com/mchughj/PixelArt/internal/view"
)

type panKey struct {
	dir  view.Direction
	fast bool
}

var panKeys = map[string]panKey{
	"h": {view.Left, false}, "left": {view.Left, false},
	"l": {view.Right, false}, "right": {view.Right, false},
	"k": {view.Up, false}, "up": {view.Up, false},
	"j": {view.Down, false}, "down": {view.Down, false},
	"H": {view.Left, true}, "shift+left": {view.Left, true},
	"L": {view.Right, true}, "shift+right": {view.Right, true},
	"K": {view.Up, true}, "shift+up": {view.Up, true},
	"J": {view.Down, true}, "shift+down": {view.Down, true},
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.l.SetSize(sidebarWidth-2, max(4, m.height-4))
		return m, nil
	case previewTickMsg:
		return m.onPreviewTick(msg)
	case exportDoneMsg:
		m.failed = msg.err != nil
		m.exportDone(msg)
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeExport:
			return m.updateExport(msg)
		case modeHistory:
			return m.updateHistory(msg)
		}
		return m.updateView(msg)
	}
	return m, nil
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.failed = false
	if pk, ok := panKeys[key]; ok {
		m.fail(m.ctl.Pan(pk.dir, pk.fast))
		return m, nil
	}
	switch key {
	case "ctrl+c", "q":
		m.saveSession()
		return m, tea.Quit
	case "s":
		m.rescale(0.5)
	case "b":
		m.rescale(2)
	case "m":
		m.markScalePoint()
	case "esc":
		if _, ok := m.ctl.ScalePoint(); ok {
			m.ctl.CancelScalePoint()
			m.status = "scale point cleared"
		} else if m.preview {
			m.stopPreview()
			m.status = "preview stopped"
		}
	case "tab":
		m.mode = modePicker
		m.refreshDir()
	case "e":
		if m.exporting {
			m.status = "export already running"
			return m, nil
		}
		return m, m.openExport()
	case "p":
		if m.preview {
			m.stopPreview()
			m.status = "preview stopped"
			return m, nil
		}
		return m, m.startPreview()
	case "g":
		m.showBorder = !m.showBorder
		m.status = fmt.Sprintf("grid border: %v", m.showBorder)
	case "a":
		if m.refreshHistory() {
			m.mode = modeHistory
			m.status = "export history (esc closes)"
		}
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

func (m *Model) rescale(factor float64) {
	if err := m.ctl.Rescale(factor); err != nil {
		m.fail(err)
		return
	}
	img := m.ctl.Image()
	m.status = fmt.Sprintf("scaled x%g: %dx%d", factor, img.Width(), img.Height())
}

func (m *Model) markScalePoint() {
	out, err := m.ctl.MarkScalePoint()
	if err != nil {
		m.fail(err)
		return
	}
	switch out {
	case view.ScaleMarked:
		p, _ := m.ctl.ScalePoint()
		m.status = fmt.Sprintf("scale point at %d,%d: move to the opposite corner and press m", p.X, p.Y)
	case view.ScaleApplied:
		img := m.ctl.Image()
		m.status = fmt.Sprintf("rescaled to %dx%d", img.Width(), img.Height())
	case view.ScaleSkipped:
		m.status = "no span between scale points, nothing to do"
	}
}

// fail puts err on the status line. A nil err does nothing.
func (m *Model) fail(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, view.ErrNoImage):
		m.status = "no image loaded (tab opens the file picker)"
	case errors.Is(err, geom.ErrImageTooSmall):
		m.status = "image would be smaller than one tile"
	default:
		m.status = "error: " + err.Error()
	}
	m.failed = true
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "ctrl+c":
		m.saveSession()
		return m, tea.Quit
	case "esc", "tab", "q":
		m.closePicker()
		return m, nil
	case "enter":
		m.choose()
		return m, nil
	}
	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return m, cmd
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.saveSession()
		return m, tea.Quit
	case "esc", "a", "q":
		m.mode = modeView
		m.status = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}
