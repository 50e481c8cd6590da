package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	contentWidth := max(10, m.width)
	headerHeight := 1
	footerHeight := 2
	contentHeight := max(4, m.height-headerHeight-footerHeight)

	header := titleStyle.Render(" pixelart ─ sprite sheet viewer ")
	if p := m.ctl.Path(); p != "" {
		header += dimStyle.Render(" " + filepath.Base(p))
	}
	header = lipgloss.NewStyle().Width(contentWidth).Render(header)

	var body string
	switch m.mode {
	case modeExport:
		body = lipgloss.Place(contentWidth, contentHeight, lipgloss.Center, lipgloss.Center, m.renderExportDialog())
	case modeHistory:
		m.tbl.SetHeight(clamp(contentHeight-4, 3, 20))
		box := boxStyle.Render(m.tbl.View())
		body = lipgloss.Place(contentWidth, contentHeight, lipgloss.Center, lipgloss.Center, box)
	default:
		main := m.renderMain(contentHeight)
		if m.mode == modePicker {
			m.l.SetSize(sidebarWidth-2, contentHeight-2)
			sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
			main = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
		}
		body = lipgloss.NewStyle().Width(contentWidth).Height(contentHeight).Render(main)
	}

	status := dimStyle.Render(" " + m.status + " ")
	if m.failed {
		status = errorStyle.Render(" " + m.status + " ")
	}
	footer := lipgloss.NewStyle().Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, status, m.renderHelp()))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderMain lays out the magnified grid next to the overview column.
func (m Model) renderMain(height int) string {
	if !m.ctl.Loaded() {
		msg := dimStyle.Render("no image loaded\n\npress tab to pick a file")
		return lipgloss.Place(40, height, lipgloss.Center, lipgloss.Center, msg)
	}
	grid, overview := m.rendered()
	side := []string{titleStyle.Render("overview"), overview, "", m.renderInfo()}
	if m.preview && m.previewFrame != nil {
		side = append(side, "", titleStyle.Render("preview"), halfBlocks(m.previewFrame))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", lipgloss.JoinVertical(lipgloss.Left, side...))
}

func (m Model) renderInfo() string {
	img := m.ctl.Image()
	off := m.ctl.Offset()
	d := m.ctl.Display()
	lines := []string{
		fmt.Sprintf("image   %dx%d (%d ch)", img.Width(), img.Height(), img.Channels()),
		fmt.Sprintf("offset  %d,%d", off.X, off.Y),
		fmt.Sprintf("tile    %dx%d", d.Tile.Dx(), d.Tile.Dy()),
		fmt.Sprintf("scale   x%.3g", m.ctl.Scale()),
	}
	info := dimStyle.Render(strings.Join(lines, "\n"))
	if p, ok := m.ctl.ScalePoint(); ok {
		info += "\n" + markStyle.Render(fmt.Sprintf("mark    %d,%d", p.X, p.Y))
	}
	return info
}

func (m Model) renderExportDialog() string {
	lines := []string{titleStyle.Render("export animation"), ""}
	for i, in := range m.inputs {
		v := in.View()
		if i == m.focus {
			v = activeStyle.Render("› ") + v
		} else {
			v = "  " + v
		}
		lines = append(lines, v)
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("start %d,%d  tab/shift+tab move  enter export  esc cancel", m.req.StartX, m.req.StartY)))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"hjkl/←↓↑→ pan",
		"HJKL tile",
		"s/b half/double",
		"m mark",
		"Tab files",
		"e export",
		"p preview",
		"g grid",
		"a history",
		"? help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
