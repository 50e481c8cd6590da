package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mchughj/PixelArt/internal/view"
)

// halfBlocks draws img with two pixel rows per terminal line: the upper
// pixel is the glyph foreground and the lower one its background.
func halfBlocks(img image.Image) string {
	b := img.Bounds()
	styles := map[[2]color.NRGBA]lipgloss.Style{}
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := toNRGBA(img.At(x, y))
			bottom, last := color.NRGBA{}, y+1 >= b.Max.Y
			if !last {
				bottom = toNRGBA(img.At(x, y+1))
			}
			key := [2]color.NRGBA{top, bottom}
			st, ok := styles[key]
			if !ok {
				st = lipgloss.NewStyle().Foreground(hexColor(top))
				if !last {
					st = st.Background(hexColor(bottom))
				}
				styles[key] = st
			}
			sb.WriteString(st.Render("▀"))
		}
	}
	return sb.String()
}

// renderGrid draws the magnified tile under the viewport.
func (m Model) renderGrid() (string, error) {
	tile, err := m.ctl.Tile()
	if err != nil {
		return "", err
	}
	border := 0
	if m.showBorder {
		border = 1
	}
	return halfBlocks(view.RenderGrid(tile, gridCellScale, border)), nil
}

// renderOverview draws the whole image with the viewport outlined.
func (m Model) renderOverview() (string, error) {
	ov, err := m.ctl.Overview(1)
	if err != nil {
		return "", err
	}
	return halfBlocks(ov), nil
}

// rendered returns the cached grid and overview, redrawing them when the
// controller reported a change or the border setting moved.
func (m Model) rendered() (grid, overview string) {
	c := m.cache
	if !m.ctl.Loaded() {
		return "", ""
	}
	if c.dirty || c.border != m.showBorder {
		var err error
		if c.grid, err = m.renderGrid(); err != nil {
			c.grid = dimStyle.Render(err.Error())
		}
		if c.overview, err = m.renderOverview(); err != nil {
			c.overview = dimStyle.Render(err.Error())
		}
		c.dirty = false
		c.border = m.showBorder
	}
	return c.grid, c.overview
}
