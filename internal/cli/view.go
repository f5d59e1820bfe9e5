package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/overlay"
	"github.com/matzehuels/vrtour/pkg/sphere"
	"github.com/matzehuels/vrtour/pkg/tour"
	"github.com/matzehuels/vrtour/pkg/viewer"
)

const (
	// cellAspect is the height/width ratio of a terminal cell.
	cellAspect = 2.0

	frameInterval = time.Second / 30
	statusLines   = 2

	rotateStep = 5 * math.Pi / 180
	zoomStep   = 5 * math.Pi / 180

	trashWidth  = 14
	trashHeight = 3

	// debugLogFile receives the log while the viewer owns the terminal.
	debugLogFile = "vrtour-debug.log"
)

// compassPoints label the eight bearings, clockwise from north.
var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	mode    tour.Mode
	room    int
	write   bool
	noCache bool
	refresh bool
}

// viewCommand creates the view command running the terminal tour viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		opts    viewOpts
		modeStr string
	)

	cmd := &cobra.Command{
		Use:   "view [manifest]",
		Short: "Walk or edit a tour in the terminal",
		Long: `Walk or edit a tour in a terminal panorama viewer.

In view mode, clicking a hotspot enters the room it points to. In edit mode,
hotspots can be dragged to a new position or dropped on the trash zone to
delete them; dragging near the left or right edge turns the camera.

Keys:
  arrows/hjkl  look around        +/-    zoom
  tab          toggle mode        1-9    enter room
  a            add hotspot        t      cycle hotspot target
  q            quit

Edits are kept in memory unless --write is given for a local manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := tour.ParseMode(modeStr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "--mode")
			}
			if !cmd.Flags().Changed("mode") && c.Config.Overlay.CanDrag {
				mode = tour.Edit
			}
			opts.mode = mode
			return c.runView(cmd.Context(), firstArg(args), opts)
		},
	}

	cmd.Flags().StringVar(&modeStr, "mode", "view", "interaction mode: view or edit")
	cmd.Flags().IntVar(&opts.room, "room", 0, "room id to start in (default: first room)")
	cmd.Flags().BoolVar(&opts.write, "write", false, "save hotspot edits back to the manifest file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the manifest cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch a remote manifest even when cached")

	return cmd
}

func (c *CLI) runView(ctx context.Context, location string, opts viewOpts) error {
	store, err := c.viewStore(ctx, location, opts)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	house, err := store.House(ctx)
	if err != nil {
		return err
	}
	start := opts.room
	if start == 0 {
		entry, ok := house.Entry()
		if !ok {
			return errors.New(errors.ErrCodeInvalidManifest, "house has no rooms")
		}
		start = entry.ID
	}

	// The terminal belongs to the viewer from here on.
	logger, closeLog, err := c.viewLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	ctx = withLogger(ctx, logger)

	cfg := c.Config
	v := viewer.New(viewer.Options{
		Size:       sphere.Size{Width: float64(cfg.Viewer.Width), Height: float64(cfg.Viewer.Height)},
		FOV:        cfg.Viewer.FOVRadians(),
		CellAspect: cellAspect,
		Logger:     logger,
	})
	surface := newTermSurface()
	ov := overlay.New(v, surface, overlay.Options{
		ClampDrag:      cfg.Overlay.ClampDrag,
		EdgeThrottle:   cfg.Overlay.EdgeThrottle.Duration,
		RotateSpeedRPM: cfg.Overlay.RotateSpeedRPM,
		Logger:         logger,
	})
	defer ov.Close()

	m := newViewModel(ctx, v, ov, surface, house.Rooms)
	nav := tour.NewNavigator(ctx, ov, store, tour.NavigatorOptions{
		Mode:    opts.mode,
		OnEnter: m.entered,
		OnError: m.failed,
		Logger:  logger,
	})
	defer nav.Close()
	m.nav = nav

	if err := nav.Enter(ctx, start); err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// viewStore opens the store edits go to: the manifest file itself with
// --write, an in-memory copy otherwise.
func (c *CLI) viewStore(ctx context.Context, location string, opts viewOpts) (tour.Store, error) {
	if !opts.write {
		h, err := c.loadHouse(ctx, location, opts.noCache, opts.refresh)
		if err != nil {
			return nil, err
		}
		return tour.NewMemoryStore(h), nil
	}
	if location == "" {
		location = c.Config.Manifest.Source
	}
	if location == "" || errors.IsURL(location) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--write needs a local manifest file")
	}
	return tour.OpenFileStore(ctx, location)
}

// viewLogger returns a logger that stays off the terminal: a file in debug
// mode, nothing otherwise. The debug hooks are moved to it.
func (c *CLI) viewLogger() (*log.Logger, func(), error) {
	if c.Logger.GetLevel() > log.DebugLevel {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := tea.LogToFile(debugLogFile, appName)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := newLogger(f, log.DebugLevel)
	c.installHooks(logger)
	return logger, func() {
		c.installHooks(c.Logger)
		_ = f.Close()
	}, nil
}

// =============================================================================
// viewModel - bubbletea model of the viewer
// =============================================================================

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// pointerState tracks the left mouse button.
type pointerState struct {
	down   bool
	marker bool // pressed on a marker rather than the panorama
	at     sphere.Point
}

// viewModel drives the viewer, overlay and navigator from terminal input.
// Navigator callbacks run inside Update, so the model is used by pointer.
type viewModel struct {
	ctx     context.Context
	viewer  *viewer.Viewer
	ov      *overlay.Overlay
	nav     *tour.Navigator
	surface *termSurface

	rooms  []tour.Room
	target int // index into rooms of the target for new hotspots

	room      tour.Room
	status    string
	statusErr bool

	width, height int
	trash         *sphere.Rect
	pointer       pointerState
	last          time.Time
}

func newViewModel(ctx context.Context, v *viewer.Viewer, ov *overlay.Overlay, s *termSurface, rooms []tour.Room) *viewModel {
	return &viewModel{
		ctx:     ctx,
		viewer:  v,
		ov:      ov,
		surface: s,
		rooms:   rooms,
		last:    time.Now(),
	}
}

func (m *viewModel) entered(r tour.Room) {
	m.room = r
	m.setStatus(false, "Entered %s", r.Name)
}

func (m *viewModel) failed(err error) {
	m.setStatus(true, "%s", errors.UserMessage(err))
}

func (m *viewModel) setStatus(isErr bool, format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = isErr
}

func (m *viewModel) Init() tea.Cmd {
	return tick()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		now := time.Time(msg)
		m.viewer.Step(now.Sub(m.last).Seconds())
		m.surface.step()
		m.last = now
		return m, tick()
	case tea.KeyMsg:
		return m, m.key(msg)
	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *viewModel) resize(w, h int) {
	m.width, m.height = w, h
	pano := m.panoramaHeight()
	trash := sphere.Rect{
		Left:   float64(w - trashWidth - 1),
		Top:    float64(pano - trashHeight - 1),
		Width:  trashWidth,
		Height: trashHeight,
	}
	m.trash = &trash
	m.nav.SetTrash(m.trash)
	m.viewer.Resize(sphere.Size{Width: float64(w), Height: float64(pano)})
}

func (m *viewModel) panoramaHeight() int {
	return max(m.height-statusLines, 1)
}

func (m *viewModel) key(msg tea.KeyMsg) tea.Cmd {
	switch k := msg.String(); k {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "left", "h":
		m.viewer.Rotate(-rotateStep, 0)
	case "right", "l":
		m.viewer.Rotate(rotateStep, 0)
	case "up", "k":
		m.viewer.Rotate(0, rotateStep)
	case "down", "j":
		m.viewer.Rotate(0, -rotateStep)
	case "+", "=":
		m.viewer.Zoom(-zoomStep)
	case "-":
		m.viewer.Zoom(zoomStep)
	case "tab":
		mode := tour.Edit
		if m.nav.Mode() == tour.Edit {
			mode = tour.View
		}
		m.nav.SetMode(mode)
		m.setStatus(false, "%s mode", mode)
	case "t":
		if len(m.rooms) > 0 {
			m.target = (m.target + 1) % len(m.rooms)
			m.setStatus(false, "New hotspots lead to %s", m.rooms[m.target].Name)
		}
	case "a":
		m.addHotspot()
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if i := int(k[0] - '1'); i < len(m.rooms) {
				if err := m.nav.Enter(m.ctx, m.rooms[i].ID); err != nil {
					m.failed(err)
				}
			}
		}
	}
	return nil
}

// addHotspot places a hotspot at the centre of the view.
func (m *viewModel) addHotspot() {
	if len(m.rooms) == 0 {
		return
	}
	target := m.rooms[m.target]
	if _, err := m.nav.AddHotspot(m.ctx, target.ID, m.viewer.Position()); err != nil {
		m.failed(err)
		return
	}
	m.setStatus(false, "Added hotspot to %s", target.Name)
}

// mouse maps the left button to overlay pointer input when it lands on a
// marker and to camera panning otherwise. The wheel zooms.
func (m *viewModel) mouse(msg tea.MouseMsg) {
	p := cellPoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.viewer.Zoom(-zoomStep)
		case tea.MouseButtonWheelDown:
			m.viewer.Zoom(zoomStep)
		case tea.MouseButtonLeft:
			m.pointer = pointerState{down: true, at: p}
			if h, ok := m.ov.HitTest(p); ok {
				m.pointer.marker = true
				m.ov.PointerDown(0, h, p)
			}
		}
	case tea.MouseActionMotion:
		if !m.pointer.down {
			return
		}
		if m.pointer.marker {
			m.ov.PointerMove(0, p)
		} else {
			m.pan(p.Sub(m.pointer.at))
		}
		m.pointer.at = p
	case tea.MouseActionRelease:
		if m.pointer.down && m.pointer.marker {
			m.ov.PointerUp(0, p, msg)
		}
		m.pointer = pointerState{}
	}
}

// pan drags the panorama along with the pointer.
func (m *viewModel) pan(d sphere.Point) {
	perRow := m.viewer.FOV() / float64(m.panoramaHeight())
	m.viewer.Rotate(-d.X*perRow/cellAspect, d.Y*perRow)
}

// =============================================================================
// Drawing
// =============================================================================

func (m *viewModel) View() string {
	if m.width == 0 {
		return ""
	}
	c := newCanvas(m.width, m.panoramaHeight())
	m.drawHorizon(c)
	m.drawCompass(c)
	if m.nav.Mode() == tour.Edit && m.trash != nil {
		c.box(*m.trash, "trash", &trashStyle)
	}
	for _, e := range m.surface.snapshot() {
		style := &markerStyle
		if e.leaving {
			style = &markerLeaveStyle
		}
		c.centered(e.pos, e.text, style)
	}

	var b strings.Builder
	b.WriteString(c.String())
	b.WriteByte('\n')
	b.WriteString(m.statusBar())
	return b.String()
}

// drawHorizon traces pitch zero across the viewport.
func (m *viewModel) drawHorizon(c *canvas) {
	forward := m.viewer.CameraForward()
	mid := float64(c.h) / 2
	for x := 0; x < c.w; x++ {
		dir, ok := m.viewer.Unproject(sphere.Point{X: float64(x) + 0.5, Y: mid})
		if !ok {
			continue
		}
		flat := sphere.Direction(sphere.Position{Yaw: sphere.FromDirection(dir).Yaw})
		if flat.Dot(forward) <= 0 {
			continue
		}
		p := m.viewer.ProjectToScreen(flat)
		c.text(x, int(math.Round(p.Y)), "─", &horizonStyle)
	}
}

// drawCompass labels the bearings on the horizon. Yaw zero looks the way
// the room faces.
func (m *viewModel) drawCompass(c *canvas) {
	forward := m.viewer.CameraForward()
	offset := m.room.Facing.Bearing()
	for i, name := range compassPoints {
		bearing := float64(i) * math.Pi / 4
		dir := sphere.Direction(sphere.Position{Yaw: bearing - offset})
		if dir.Dot(forward) <= 0 {
			continue
		}
		c.centered(m.viewer.ProjectToScreen(dir), name, &compassStyle)
	}
}

func (m *viewModel) statusBar() string {
	mode := m.nav.Mode()
	badge := modeViewStyle.Render(mode.String())
	if mode == tour.Edit {
		badge = modeEditStyle.Render(mode.String())
	}

	parts := []string{badge, StyleTitle.Render(m.room.Name)}
	if f := m.room.Facing.English(); f != "" {
		parts = append(parts, StyleDim.Render("facing "+f))
	}
	pos := m.viewer.Position()
	parts = append(parts, StyleDim.Render(fmt.Sprintf("yaw %.0f° pitch %.0f°",
		sphere.Degrees(sphere.NormalizeYaw(pos.Yaw)), sphere.Degrees(pos.Pitch))))
	if mode == tour.Edit && len(m.rooms) > 0 {
		parts = append(parts, StyleDim.Render("new → ")+StyleHighlight.Render(m.rooms[m.target].Name))
	}
	line := strings.Join(parts, " ")

	status := StyleDim.Render("arrows look · click hotspot · tab mode · q quit")
	if m.status != "" {
		status = styleIconInfo.Render(iconInfo) + " " + m.status
		if m.statusErr {
			status = styleIconError.Render(iconError) + " " + StyleWarning.Render(m.status)
		}
	}
	return line + "\n" + status
}
