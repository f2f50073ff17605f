package fragment

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/logger"
	pmath "github.com/Faultbox/shatter/pkg/math"
)

// Pass is one stage of a detonation.
type Pass struct {
	Radius float32
	Depth  int
}

// Detonation is a two-stage explosion. The first stage runs when it is
// created; the host completes it one scheduling step later, once the first
// stage's fragments exist and can be hit again.
type Detonation struct {
	engine *Engine
	center pmath.Vec3
	done   bool
}

// BeginPass runs the shallow stage of a detonation at center against every
// body the physics world finds in range.
func (e *Engine) BeginPass(center pmath.Vec3) (*Detonation, []Report, error) {
	d := &Detonation{engine: e, center: center}
	reports, err := e.pass(center, e.opts.Shallow)
	return d, reports, err
}

// CompletePass runs the deep stage.
func (d *Detonation) CompletePass() ([]Report, error) {
	if d.done {
		return nil, ErrPassCompleted
	}
	d.done = true
	return d.engine.pass(d.center, d.engine.opts.Deep)
}

// Done reports whether the deep stage has run.
func (d *Detonation) Done() bool {
	return d.done
}

// pass explodes every active body in range. Failures are scoped to the body
// they happen on.
func (e *Engine) pass(center pmath.Vec3, p Pass) ([]Report, error) {
	query := max(e.opts.Shallow.Radius, e.opts.Deep.Radius)
	blast := Blast{Center: center, Radius: p.Radius, RelativeDepth: p.Depth}

	var reports []Report
	var errs []error
	for _, b := range e.physics.Overlapping(center, query) {
		if !b.Active() {
			continue
		}
		r, err := e.Explode(b, blast)
		if err != nil {
			logger.Warn("explosion failed", zap.String("body", b.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, errors.Join(errs...)
}
