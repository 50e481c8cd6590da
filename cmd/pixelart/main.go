package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v2"

	"github.com/mchughj/PixelArt/internal/frames"
	"github.com/mchughj/PixelArt/internal/imgio"
	"github.com/mchughj/PixelArt/internal/store"
	"github.com/mchughj/PixelArt/internal/tui"
	"github.com/mchughj/PixelArt/internal/view"
)

const defaultDB = "pixelart.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "pixelart"
	app.Usage = "browse sprite sheets tile by tile and export animations"
	app.Version = "1.0.0"

	defaults := view.DefaultConfig()

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:  "tile-width",
			Value: defaults.TileWidth,
			Usage: "tile width in pixels",
		},
		&cli.IntFlag{
			Name:  "tile-height",
			Value: defaults.TileHeight,
			Usage: "tile height in pixels",
		},
		&cli.IntFlag{
			Name:  "cell-scale",
			Value: defaults.CellScale,
			Usage: "magnified size of one tile pixel",
		},
		&cli.IntFlag{
			Name:  "cell-border",
			Value: defaults.CellBorder,
			Usage: "grid line width between magnified pixels",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PIXELART_DB"},
			Value:   defaultDB,
			Usage:   "path to session and history database, empty to disable",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "write the terminal UI log to `FILE`",
		},
	}

	app.Action = viewAction

	app.Commands = []*cli.Command{
		{
			Name:      "view",
			Usage:     "Browse an image in the terminal",
			ArgsUsage: "[IMAGE]",
			Action:    viewAction,
		},
		{
			Name:      "export",
			Usage:     "Export a run of tiles as an animated GIF",
			ArgsUsage: "IMAGE",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "x", Usage: "start offset x (default 0)"},
				&cli.IntFlag{Name: "y", Usage: "start offset y (default 0)"},
				&cli.IntFlag{Name: "stride-x", Usage: "horizontal step (default tile width)"},
				&cli.IntFlag{Name: "stride-y", Usage: "vertical step (default tile height)"},
				&cli.IntFlag{Name: "frames", Usage: "number of frames (default rest of the row)"},
				&cli.IntFlag{Name: "delay", Value: frames.DefaultDelay, Usage: "frame delay in milliseconds"},
				&cli.IntFlag{Name: "columns", Usage: "row width in tiles (default whole image)"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output `FILE` (default IMAGE-anim.gif)"},
			},
			Action: exportAction,
		},
		{
			Name:      "snapshot",
			Usage:     "Write the magnified grid and overview of one viewport as PNG",
			ArgsUsage: "IMAGE",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "x", Usage: "viewport offset x"},
				&cli.IntFlag{Name: "y", Usage: "viewport offset y"},
				&cli.StringFlag{Name: "grid", Usage: "grid output `FILE` (default IMAGE-grid.png)"},
				&cli.StringFlag{Name: "overview", Usage: "overview output `FILE` (default IMAGE-overview.png)"},
				&cli.IntFlag{Name: "box-width", Value: defaults.OverviewWidth, Usage: "overview box width"},
				&cli.IntFlag{Name: "box-height", Value: defaults.OverviewHeight, Usage: "overview box height"},
			},
			Action: snapshotAction,
		},
		{
			Name:  "history",
			Usage: "List recorded exports",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of exports to show, 0 for all"},
			},
			Action: historyAction,
		},
	}

	return app
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newConfig(c *cli.Context) view.Config {
	cfg := view.DefaultConfig()
	cfg.TileWidth = c.Int("tile-width")
	cfg.TileHeight = c.Int("tile-height")
	cfg.CellScale = c.Int("cell-scale")
	cfg.CellBorder = c.Int("cell-border")
	return cfg
}

// openStore opens the database named by --db. It returns nil when
// persistence is disabled.
func openStore(c *cli.Context) (*store.Store, error) {
	path := c.String("db")
	if path == "" {
		return nil, nil
	}
	return store.Open(path)
}

// load builds a controller and loads the command's IMAGE argument,
// moving the viewport to --x/--y.
func load(c *cli.Context, cfg view.Config, logger *log.Logger) (*view.Controller, error) {
	if c.NArg() < 1 {
		return nil, errors.New("IMAGE argument required")
	}
	ctl, err := view.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := ctl.LoadFile(c.Args().First()); err != nil {
		return nil, err
	}
	if err := ctl.SetOffset(c.Int("x"), c.Int("y")); err != nil {
		return nil, err
	}
	return ctl, nil
}

func viewAction(c *cli.Context) error {
	// stderr belongs to the terminal UI, so only --log enables logging
	logger := log.New(io.Discard, "", 0)
	if file := c.String("log"); file != "" {
		f, err := tea.LogToFile(file, "pixelart ")
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer f.Close()
		logger = log.Default()
	}

	cfg := newConfig(c)
	cfg.OverviewWidth, cfg.OverviewHeight = tui.OverviewWidth, tui.OverviewHeight
	ctl, err := view.New(cfg, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}

	st, err := openStore(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	var history tui.History
	if st != nil {
		defer st.Close()
		history = st
	}

	m := tui.NewWithPath(ctl, history, logger, c.Args().First())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func exportAction(c *cli.Context) error {
	logger := newLogger(c)
	ctl, err := load(c, newConfig(c), logger)
	if err != nil {
		return cli.Exit(err, 1)
	}
	snap, err := ctl.Snapshot()
	if err != nil {
		return cli.Exit(err, 1)
	}

	req := frames.NewRequest(snap)
	req.DelayMS = c.Int("delay")
	if c.IsSet("stride-x") {
		req.StrideX = c.Int("stride-x")
	}
	if c.IsSet("stride-y") {
		req.StrideY = c.Int("stride-y")
	}
	if c.IsSet("frames") {
		req.FrameCount = c.Int("frames")
	}
	if c.IsSet("columns") {
		req.Columns = c.Int("columns")
	}
	if c.IsSet("out") {
		req.Output = c.String("out")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	res, err := frames.Export(ctx, req, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintf(c.App.Writer, "wrote %d frames to %s\n", res.Frames, res.Output)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(c.App.Writer, "skipped out-of-bounds frames %v\n", res.Skipped)
	}

	st, err := openStore(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if st == nil {
		return nil
	}
	defer st.Close()
	err = st.RecordExport(store.Export{
		Image:   absPath(snap.Path),
		Output:  absPath(res.Output),
		Frames:  res.Frames,
		Skipped: len(res.Skipped),
		DelayMS: req.DelayMS,
	})
	if err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func snapshotAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg := newConfig(c)
	cfg.OverviewWidth = c.Int("box-width")
	cfg.OverviewHeight = c.Int("box-height")
	ctl, err := load(c, cfg, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}

	src := c.Args().First()
	base := strings.TrimSuffix(src, filepath.Ext(src))
	gridFile, overviewFile := base+"-grid.png", base+"-overview.png"
	if c.IsSet("grid") {
		gridFile = c.String("grid")
	}
	if c.IsSet("overview") {
		overviewFile = c.String("overview")
	}

	grid, err := ctl.Grid()
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := imgio.SavePNG(gridFile, grid); err != nil {
		return cli.Exit(err, 1)
	}
	overview, err := ctl.Overview(1)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := imgio.SavePNG(overviewFile, overview); err != nil {
		return cli.Exit(err, 1)
	}

	d := ctl.Display()
	fmt.Fprintf(c.App.Writer, "viewport %v  grid %dx%d -> %s\n", d.Tile, d.Width, d.Height, gridFile)
	fmt.Fprintf(c.App.Writer, "overview ratio %.4f  highlight %v -> %s\n", d.OverviewRatio, d.Highlight, overviewFile)
	return nil
}

func historyAction(c *cli.Context) error {
	st, err := openStore(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if st == nil {
		return cli.Exit("history is disabled without --db", 1)
	}
	defer st.Close()

	exports, err := st.Exports(c.Int("limit"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	if len(exports) == 0 {
		fmt.Fprintln(c.App.Writer, "no exports recorded")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "when", "image", "output", "frames", "skipped", "delay")
	for _, e := range exports {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			e.Created.Format("2006-01-02 15:04"),
			e.Image,
			e.Output,
			strconv.Itoa(e.Frames),
			strconv.Itoa(e.Skipped),
			strconv.Itoa(e.DelayMS)+"ms",
		)
	}
	fmt.Fprintln(c.App.Writer, t)
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
