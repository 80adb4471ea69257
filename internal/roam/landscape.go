// Package roam implements a real-time optimally adapting mesh: a split/merge
// binary triangle tree that keeps a crack-free, view-dependent triangulation
// of a heightfield within a fixed angular error.
//
// A Landscape owns the patches, the node arena and the two priority queues.
// Each frame it moves the tile window (tiled mode), reseeds the queues from
// every patch, splits and merges until the error threshold is met, and hands
// the leaf triangles of every patch to a Sink. Everything runs on the
// caller's goroutine.
package roam

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/roam/internal/logger"
	"github.com/Faultbox/roam/pkg/math"
)

// Landscape errors.
var (
	ErrPatchSize   = errors.New("patch size must be a power of two and at least 2")
	ErrGridSize    = errors.New("grid size is not a whole number of patches")
	ErrTileSize    = errors.New("tile size does not match patch size")
	ErrUnknownMode = errors.New("unknown landscape mode")
	ErrSourceMode  = errors.New("terrain source does not support landscape mode")
	ErrAccuracy    = errors.New("accuracy threshold must be positive")
	ErrInitialized = errors.New("landscape already initialized")
)

// Mode selects how the landscape lays out its patches.
type Mode int

// Landscape modes.
const (
	// ModeStatic covers a fixed heightfield with a grid of patches built once.
	ModeStatic Mode = iota
	// ModeTiled streams one patch per tile around the viewer.
	ModeTiled
	// ModeFreeform is accepted but produces no geometry.
	ModeFreeform
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeTiled:
		return "tiled"
	case ModeFreeform:
		return "freeform"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a configuration name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return ModeStatic, nil
	case "tiled":
		return ModeTiled, nil
	case "freeform":
		return ModeFreeform, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Defaults used by DefaultOptions.
const (
	DefaultPatchSize   = 64
	DefaultAccuracyDeg = 0.1
	DefaultTileWindow  = 7
)

// Options configures a Landscape. The accuracy threshold is fixed for the
// lifetime of the landscape.
type Options struct {
	Mode      Mode
	PatchSize int
	// Accuracy is the largest tolerated screen-space error in radians.
	Accuracy float32
	// TileWindow is the side of the resident tile window in tiled mode.
	TileWindow int
	// Logger defaults to the "roam.landscape" child of the global logger.
	Logger *zap.Logger
}

// DefaultOptions returns tiled-mode options with 64-cell patches and a
// 0.1 degree error bound.
func DefaultOptions() Options {
	return Options{
		Mode:       ModeTiled,
		PatchSize:  DefaultPatchSize,
		Accuracy:   math.Radians(DefaultAccuracyDeg),
		TileWindow: DefaultTileWindow,
	}
}

// FrameStats describes the work done by the last SetView.
type FrameStats struct {
	Frame     uint64
	Splits    int
	Merges    int
	Triangles int
	Patches   int
	Nodes     int
	// Tiled mode only.
	Loaded      int
	Evicted     int
	Recycled    int
	FreePatches int
	Bounds      TileRect
}

// Landscape is the split/merge controller.
type Landscape struct {
	opts   Options
	source Source
	viewer Viewer
	sink   Sink
	log    *zap.Logger

	pool  *nodePool
	queue *QueueManager

	patches []*Patch
	byTile  map[tileKey]*Patch
	free    []*Patch

	bounds     TileRect
	haveBounds bool

	initialized bool
	inFrame     bool
	warned      bool
	frame       uint64
	stats       FrameStats
}

// New creates a landscape over a terrain source. Static mode needs a
// StaticSource, tiled mode a TiledSource whose tile size equals the patch
// size.
func New(src Source, viewer Viewer, sink Sink, opts Options) (*Landscape, error) {
	if opts.PatchSize < 2 || !math.IsPowerOfTwo(opts.PatchSize) {
		return nil, fmt.Errorf("%w: %d", ErrPatchSize, opts.PatchSize)
	}
	if !(opts.Accuracy > 0) {
		return nil, fmt.Errorf("%w: %v", ErrAccuracy, opts.Accuracy)
	}
	if opts.TileWindow < 1 {
		opts.TileWindow = DefaultTileWindow
	}

	switch opts.Mode {
	case ModeStatic:
		if _, ok := src.(StaticSource); !ok {
			return nil, fmt.Errorf("%w: %s needs a StaticSource, got %T", ErrSourceMode, opts.Mode, src)
		}
	case ModeTiled:
		ts, ok := src.(TiledSource)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs a TiledSource, got %T", ErrSourceMode, opts.Mode, src)
		}
		if ts.TileSize() != opts.PatchSize {
			return nil, fmt.Errorf("%w: tile size %d, patch size %d", ErrTileSize, ts.TileSize(), opts.PatchSize)
		}
	case ModeFreeform:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(opts.Mode))
	}

	log := opts.Logger
	if log == nil {
		log = logger.Named("roam.landscape")
	}

	pool := newNodePool(1024)
	return &Landscape{
		opts:   opts,
		source: src,
		viewer: viewer,
		sink:   sink,
		log:    log,
		pool:   pool,
		queue:  newQueueManager(pool),
		byTile: make(map[tileKey]*Patch),
	}, nil
}

// Initialize builds the initial patch set and refines it for the first view.
func (l *Landscape) Initialize(position, direction math.Vec3) error {
	if l.initialized {
		return ErrInitialized
	}
	l.viewer.Look(position, direction)

	switch l.opts.Mode {
	case ModeStatic:
		if err := l.buildStatic(); err != nil {
			return err
		}
	case ModeFreeform:
		l.warnFreeform()
	}

	l.initialized = true
	l.log.Info("landscape initialized",
		zap.Stringer("mode", l.opts.Mode),
		zap.Int("patch_size", l.opts.PatchSize),
		zap.Int("patches", len(l.patches)))
	l.SetView(position, direction)
	return nil
}

func (l *Landscape) warnFreeform() {
	if l.warned {
		return
	}
	l.warned = true
	l.log.Warn("freeform terrain mode is not supported, no geometry will be produced")
}

// buildStatic covers the whole heightfield with a fixed grid of patches.
func (l *Landscape) buildStatic() error {
	src := l.source.(StaticSource)
	n := l.opts.PatchSize
	w, d := src.GridWidth(), src.GridDepth()
	if w < n+1 || d < n+1 || (w-1)%n != 0 || (d-1)%n != 0 {
		return fmt.Errorf("%w: %dx%d points with patch size %d", ErrGridSize, w, d, n)
	}

	cols, rows := (w-1)/n, (d-1)/n
	for tz := 0; tz < rows; tz++ {
		for tx := 0; tx < cols; tx++ {
			p, err := newPatch(n, l.pool)
			if err != nil {
				return err
			}
			p.setTile(tx, tz)
			p.SetOrigin(tx*n, tz*n)
			p.Reset(src)
			p.MakeActive(true)
			l.byTile[tileKey{tx, tz}] = p
			l.patches = append(l.patches, p)
		}
	}
	for _, p := range l.patches {
		if o, ok := l.byTile[tileKey{p.tileX + 1, p.tileZ}]; ok {
			p.SetNeighbour(East, o, l.viewer, l.queue)
		}
		if o, ok := l.byTile[tileKey{p.tileX, p.tileZ + 1}]; ok {
			p.SetNeighbour(North, o, l.viewer, l.queue)
		}
	}
	l.queue.Clear()
	return nil
}

// SetView refines the mesh for a new viewer position and gaze direction and
// submits the geometry of every active patch to the sink.
func (l *Landscape) SetView(position, direction math.Vec3) {
	if l.inFrame {
		panic("roam: SetView called re-entrantly")
	}
	if !l.initialized {
		l.log.Warn("SetView before Initialize ignored")
		return
	}
	l.inFrame = true
	defer func() { l.inFrame = false }()

	l.frame++
	stats := FrameStats{Frame: l.frame}
	l.viewer.Look(position, direction)

	switch l.opts.Mode {
	case ModeTiled:
		l.reconcileTiles(position, direction, &stats)
	case ModeFreeform:
		l.warnFreeform()
	}

	l.queue.Clear()
	l.pool.nextFrame()
	for _, p := range l.patches {
		p.SetView(l.viewer, l.queue)
	}
	l.refine(&stats)

	for _, p := range l.patches {
		p.UpdateGeometry(l.sink)
		stats.Triangles += p.TriangleCount()
	}
	l.queue.Clear()

	stats.Patches = len(l.patches)
	stats.Nodes = l.pool.Live()
	stats.FreePatches = len(l.free)
	l.stats = stats

	l.log.Debug("frame",
		zap.Uint64("frame", stats.Frame),
		zap.Int("splits", stats.Splits),
		zap.Int("merges", stats.Merges),
		zap.Int("triangles", stats.Triangles),
		zap.Int("patches", stats.Patches),
		zap.Int("nodes", stats.Nodes))
}

// refine splits the worst leaf while it exceeds the threshold, otherwise
// merges the best diamond while it is below it. Candidates on the wrong side
// of the threshold are never acted on, which keeps a split and a merge of
// the same diamond from alternating.
func (l *Landscape) refine(stats *FrameStats) {
	threshold := l.opts.Accuracy
	for {
		sid, sv, canSplit := l.queue.MaxSplitCandidate()
		mid, mv, canMerge := l.queue.MinMergeCandidate()
		switch {
		case canSplit && sv > threshold:
			l.pool.ForceSplit(sid, l.viewer, l.queue)
			stats.Splits++
		case canMerge && mv < threshold:
			if !l.pool.Merge(mid, l.queue) {
				panic(invariantf("queued diamond %d is not mergeable", mid))
			}
			stats.Merges++
		default:
			return
		}
	}
}

// Stats returns the statistics of the last frame.
func (l *Landscape) Stats() FrameStats { return l.stats }

// Mode returns the patch layout mode.
func (l *Landscape) Mode() Mode { return l.opts.Mode }

// Accuracy returns the error threshold in radians.
func (l *Landscape) Accuracy() float32 { return l.opts.Accuracy }

// Bounds returns the resident tile window in tiled mode.
func (l *Landscape) Bounds() TileRect { return l.bounds }

// Patches returns the active patches ordered south to north, west to east.
func (l *Landscape) Patches() []*Patch {
	out := make([]*Patch, len(l.patches))
	copy(out, l.patches)
	return out
}

// Patch returns the patch at a tile coordinate, or nil.
func (l *Landscape) Patch(tileX, tileZ int) *Patch {
	return l.byTile[tileKey{tileX, tileZ}]
}

// Node returns a copy of a live node.
func (l *Landscape) Node(id NodeID) TreeNode {
	return *l.pool.node(id)
}
