package sim

import (
	"fmt"

	"github.com/Faultbox/shatter/internal/body"
	pmath "github.com/Faultbox/shatter/pkg/math"
)

// Action is a named input the host reacts to.
type Action int

// Input actions.
const (
	ActionNone Action = iota
	ActionFragment
	ActionUnfragment
)

var actionNames = map[Action]string{
	ActionFragment:   "fragment",
	ActionUnfragment: "unfragment",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ParseAction returns the action bound to name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown input action %q", name)
}

// Event is one input. Fragment events detonate at Point. Unfragment events
// heal Body, or the body nearest to Point when Body is nil, toward Target.
type Event struct {
	Action Action
	Point  pmath.Vec3
	Body   *body.Body
	Target *pmath.Transform
}
