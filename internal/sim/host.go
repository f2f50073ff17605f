package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/shatter/internal/body"
	"github.com/Faultbox/shatter/internal/fragment"
	"github.com/Faultbox/shatter/internal/heal"
	"github.com/Faultbox/shatter/internal/logger"
	pmath "github.com/Faultbox/shatter/pkg/math"
)

var (
	// ErrBusy is returned for explosions requested while a heal is running,
	// for heals requested while a detonation is incomplete, and for a second
	// heal on an object that is already healing.
	ErrBusy = errors.New("heal in progress")

	// ErrNoTarget is returned when an unfragment event finds nothing to heal.
	ErrNoTarget = errors.New("no body to heal")
)

// Host routes input events to the fragmentation and healing engines and
// drives the world. Handle and Step must be called from one goroutine;
// heals run in the background and finish on later steps.
type Host struct {
	world *World
	frag  *fragment.Engine
	heal  *heal.Engine

	pending []*fragment.Detonation
	heals   errgroup.Group

	mu      sync.Mutex
	healing map[*body.Object]int
	healed  []heal.Result
}

// NewHost returns a host over world.
func NewHost(world *World, frag *fragment.Engine, h *heal.Engine) *Host {
	return &Host{
		world:   world,
		frag:    frag,
		heal:    h,
		healing: make(map[*body.Object]int),
	}
}

// Handle reacts to one input event.
func (h *Host) Handle(ctx context.Context, ev Event) error {
	switch ev.Action {
	case ActionFragment:
		return h.detonate(ev.Point)
	case ActionUnfragment:
		return h.unfragment(ctx, ev)
	default:
		return fmt.Errorf("unhandled input action %s", ev.Action)
	}
}

func (h *Host) detonate(at pmath.Vec3) error {
	if h.Healing() > 0 {
		return ErrBusy
	}
	d, reports, err := h.frag.BeginPass(at)
	logReports("shallow", reports)
	h.pending = append(h.pending, d)
	return err
}

func (h *Host) unfragment(ctx context.Context, ev Event) error {
	if len(h.pending) > 0 {
		return ErrBusy
	}
	b := ev.Body
	if b == nil {
		b = h.nearest(ev.Point)
	}
	if b == nil {
		return ErrNoTarget
	}

	obj := b.Object
	h.mu.Lock()
	if h.healing[obj] > 0 {
		h.mu.Unlock()
		return ErrBusy
	}
	h.healing[obj]++
	h.mu.Unlock()

	h.heals.Go(func() error {
		defer func() {
			h.mu.Lock()
			if h.healing[obj]--; h.healing[obj] == 0 {
				delete(h.healing, obj)
			}
			h.mu.Unlock()
		}()

		res, err := h.heal.Activate(ctx, b, ev.Target)
		if err != nil {
			logger.Warn("heal failed", zap.String("body", b.Name), zap.Error(err))
			return err
		}
		h.mu.Lock()
		h.healed = append(h.healed, res)
		h.mu.Unlock()
		return nil
	})
	return nil
}

// nearest returns the body holding p, or else the one whose centre is
// closest to it.
func (h *Host) nearest(p pmath.Vec3) *body.Body {
	var best *body.Body
	var bestDist float32
	for _, b := range h.world.Bodies() {
		if !b.Active() {
			continue
		}
		if b.Contains(p) {
			return b
		}
		d := b.WorldCenter(b.Root).Distance(p)
		if best == nil || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// Step completes detonations begun on the previous step, then advances
// the world by dt.
func (h *Host) Step(dt time.Duration) error {
	pending := h.pending
	h.pending = nil

	var errs []error
	for _, d := range pending {
		reports, err := d.CompletePass()
		logReports("deep", reports)
		if err != nil {
			errs = append(errs, err)
		}
	}
	h.world.Tick(dt)
	return errors.Join(errs...)
}

// Healing returns the number of heals still running.
func (h *Host) Healing() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, c := range h.healing {
		n += c
	}
	return n
}

// Healed returns the results of finished heals.
func (h *Host) Healed() []heal.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]heal.Result, len(h.healed))
	copy(out, h.healed)
	return out
}

// Wait blocks until every heal has finished and returns the first heal
// error. Someone else must keep stepping the world meanwhile.
func (h *Host) Wait() error {
	return h.heals.Wait()
}

func logReports(stage string, reports []fragment.Report) {
	for _, r := range reports {
		logger.Info("explosion",
			zap.String("stage", stage),
			zap.String("body", r.Body.Name),
			zap.Stringer("outcome", r.Outcome),
			zap.Int("removed", len(r.Removed)),
			zap.Int("fragments", len(r.Fragments)),
			zap.Int("remainder", len(r.Remainder)))
	}
}
