package viewer

import (
	"io"
	"math"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/vrtour/pkg/overlay"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

const (
	// DefaultFOV is the default vertical field of view (65 degrees).
	DefaultFOV = 65 * math.Pi / 180

	// MinFOV and MaxFOV bound zooming.
	MinFOV = 30 * math.Pi / 180
	MaxFOV = 90 * math.Pi / 180

	// pitchLimit keeps the camera basis well defined at the poles.
	pitchLimit = math.Pi/2 - 1e-3

	// behindEpsilon is the depth used for directions behind the camera plane.
	behindEpsilon = 1e-6
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Options configures a Viewer.
type Options struct {
	// Size is the viewport size in display units (pixels or terminal cells).
	Size sphere.Size

	// FOV is the vertical field of view in radians. Defaults to DefaultFOV.
	FOV float64

	// CellAspect is the height/width ratio of one display unit. Defaults to 1.
	CellAspect float64

	// Position is the initial camera position.
	Position sphere.Position

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

// Viewer is a software panorama host. It is safe for concurrent use.
type Viewer struct {
	mu         sync.Mutex
	pos        sphere.Position
	fov        float64
	size       sphere.Size
	cellAspect float64
	objects    []Object
	anim       *animation

	listeners map[int]func()
	nextID    int

	logger *log.Logger
}

type animation struct {
	target sphere.Position
	speed  float64 // rad/s
}

// New creates a viewer with a panorama sphere of radius 1 centred on the camera.
func New(opts Options) *Viewer {
	if opts.FOV <= 0 {
		opts.FOV = DefaultFOV
	}
	if opts.CellAspect <= 0 {
		opts.CellAspect = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	v := &Viewer{
		fov:        opts.FOV,
		size:       opts.Size,
		cellAspect: opts.CellAspect,
		objects:    []Object{Sphere{Radius: 1, Name: PanoramaTag}},
		listeners:  make(map[int]func()),
		logger:     opts.Logger,
	}
	v.pos = clampPosition(opts.Position)
	return v
}

// Ensure Viewer implements overlay.Host.
var _ overlay.Host = (*Viewer)(nil)

// =============================================================================
// Render notifications
// =============================================================================

// OnRender registers fn to run on every render. The returned function
// unregisters it; calling it more than once is harmless.
func (v *Viewer) OnRender(fn func()) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// Render notifies every render listener. Listeners run without the viewer
// lock held and may query the viewer.
func (v *Viewer) Render() {
	v.mu.Lock()
	ids := make([]int, 0, len(v.listeners))
	for id := range v.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.listeners[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// Camera state
// =============================================================================

// Position returns the current camera position.
func (v *Viewer) Position() sphere.Position {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

// SetPosition moves the camera, cancels any running animation and renders.
func (v *Viewer) SetPosition(p sphere.Position) {
	v.mu.Lock()
	v.pos = clampPosition(p)
	v.anim = nil
	v.mu.Unlock()
	v.Render()
}

// Rotate turns the camera by the given yaw and pitch deltas in radians,
// cancels any running animation and renders.
func (v *Viewer) Rotate(dyaw, dpitch float64) {
	v.mu.Lock()
	v.pos = clampPosition(sphere.Position{Pitch: v.pos.Pitch + dpitch, Yaw: v.pos.Yaw + dyaw})
	v.anim = nil
	v.mu.Unlock()
	v.Render()
}

// Zoom changes the field of view by delta radians within [MinFOV, MaxFOV].
func (v *Viewer) Zoom(delta float64) {
	v.mu.Lock()
	v.fov = math.Max(MinFOV, math.Min(MaxFOV, v.fov+delta))
	v.mu.Unlock()
	v.Render()
}

// FOV returns the vertical field of view in radians.
func (v *Viewer) FOV() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fov
}

// Resize changes the viewport size and renders.
func (v *Viewer) Resize(s sphere.Size) {
	v.mu.Lock()
	v.size = s
	v.mu.Unlock()
	v.Render()
}

// AddObject places extra geometry in the scene.
func (v *Viewer) AddObject(o Object) {
	v.mu.Lock()
	v.objects = append(v.objects, o)
	v.mu.Unlock()
}

// =============================================================================
// overlay.Host
// =============================================================================

// CameraForward returns the unit direction the camera looks at.
func (v *Viewer) CameraForward() mgl64.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return sphere.Direction(v.pos)
}

// ViewportSize returns the viewport size.
func (v *Viewer) ViewportSize() sphere.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

// ProjectToScreen maps a scene direction to viewport coordinates. Directions
// behind the camera land far outside the viewport.
func (v *Viewer) ProjectToScreen(dir mgl64.Vec3) sphere.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.camera()
	x := dir.Dot(c.right)
	y := dir.Dot(c.up)
	z := dir.Dot(c.forward)
	if z < behindEpsilon {
		z = behindEpsilon
	}
	return sphere.Point{
		X: v.size.Width/2 + x/z*c.fx,
		Y: v.size.Height/2 - y/z*c.fy,
	}
}

// Unproject casts a ray through p and returns the direction of the first hit
// on the panorama surface.
func (v *Viewer) Unproject(p sphere.Point) (mgl64.Vec3, bool) {
	for _, h := range v.Intersections(p) {
		if h.Tag == PanoramaTag {
			return h.Point.Normalize(), true
		}
	}
	return mgl64.Vec3{}, false
}

// Intersections casts a ray through p and returns every hit sorted by
// distance.
func (v *Viewer) Intersections(p sphere.Point) []Hit {
	v.mu.Lock()
	c := v.camera()
	size := v.size
	objects := append([]Object(nil), v.objects...)
	v.mu.Unlock()

	if c.fx == 0 || c.fy == 0 || size.Width <= 0 || size.Height <= 0 {
		return nil
	}
	dx := (p.X - size.Width/2) / c.fx
	dy := -(p.Y - size.Height/2) / c.fy
	dir := c.forward.Add(c.right.Mul(dx)).Add(c.up.Mul(dy)).Normalize()

	var origin mgl64.Vec3
	var hits []Hit
	for _, o := range objects {
		if t, ok := o.Intersect(origin, dir); ok {
			hits = append(hits, Hit{Distance: t, Point: origin.Add(dir.Mul(t)), Tag: o.Tag()})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// AnimateCamera starts moving the camera towards a.Target at a.SpeedRPM
// revolutions per minute. A non-positive speed jumps immediately.
func (v *Viewer) AnimateCamera(a overlay.Animation) {
	if a.SpeedRPM <= 0 {
		v.SetPosition(a.Target)
		return
	}
	v.mu.Lock()
	v.anim = &animation{
		target: clampPosition(a.Target),
		speed:  a.SpeedRPM * 2 * math.Pi / 60,
	}
	v.mu.Unlock()
	v.logger.Debug("camera animation", "pitch", a.Target.Pitch, "yaw", a.Target.Yaw, "rpm", a.SpeedRPM)
}

// Animating reports whether a camera animation is in progress.
func (v *Viewer) Animating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.anim != nil
}

// Step advances the running animation by dt seconds and renders if the
// camera moved. It reports whether the animation is still running.
func (v *Viewer) Step(dt float64) bool {
	v.mu.Lock()
	if v.anim == nil || dt <= 0 {
		running := v.anim != nil
		v.mu.Unlock()
		return running
	}
	a := v.anim
	dyaw := sphere.YawDelta(v.pos.Yaw, a.target.Yaw)
	dpitch := a.target.Pitch - v.pos.Pitch
	dist := math.Hypot(dyaw, dpitch)
	step := a.speed * dt
	if dist <= step {
		v.pos = a.target
		v.anim = nil
	} else {
		f := step / dist
		v.pos = clampPosition(sphere.Position{
			Pitch: v.pos.Pitch + dpitch*f,
			Yaw:   v.pos.Yaw + dyaw*f,
		})
	}
	running := v.anim != nil
	v.mu.Unlock()

	v.Render()
	return running
}

// =============================================================================
// Internals
// =============================================================================

type cameraBasis struct {
	forward, right, up mgl64.Vec3
	fx, fy             float64
}

// camera must be called with v.mu held.
func (v *Viewer) camera() cameraBasis {
	forward := sphere.Direction(v.pos)
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)
	f := 0.0
	if v.size.Height > 0 {
		f = (v.size.Height / 2) / math.Tan(v.fov/2)
	}
	return cameraBasis{forward: forward, right: right, up: up, fx: f * v.cellAspect, fy: f}
}

func clampPosition(p sphere.Position) sphere.Position {
	return sphere.Position{
		Pitch: math.Max(-pitchLimit, math.Min(pitchLimit, p.Pitch)),
		Yaw:   sphere.NormalizeYaw(p.Yaw),
	}
}
