package action

import "fmt"

// Directive is how a combo action redirects the chain after it lands.
// Exactly one directive applies per action.
type Directive string

const (
	RouteNext           Directive = ""
	RouteJumpToSlot     Directive = "jump_to_slot"
	RouteSkipNext       Directive = "skip_next"
	RouteRepeatPrevious Directive = "repeat_previous"
	RouteLoopToStart    Directive = "loop_to_start"
	RouteStopEarly      Directive = "stop_early"
	RouteDisableSlot    Directive = "disable_slot"
	RouteRandomAction   Directive = "random_action"
	// RouteRestrictToSlot makes the action usable only from Slot; the chain
	// then advances normally.
	RouteRestrictToSlot Directive = "restrict_to_slot"
)

// Routing is the combo routing outcome of an action. Slot is 1-based and
// only meaningful for RouteJumpToSlot and RouteRestrictToSlot.
type Routing struct {
	Directive Directive `yaml:"directive"`
	Slot      int       `yaml:"slot"`
}

// Validate rejects unknown directives and slots on directives without one.
func (r Routing) Validate() error {
	switch r.Directive {
	case RouteJumpToSlot, RouteRestrictToSlot:
		if r.Slot < 1 {
			return fmt.Errorf("%s requires slot >= 1, got %d", r.Directive, r.Slot)
		}
	case RouteNext, RouteSkipNext, RouteRepeatPrevious, RouteLoopToStart,
		RouteStopEarly, RouteDisableSlot, RouteRandomAction:
		if r.Slot != 0 {
			return fmt.Errorf("directive %q takes no slot", r.Directive)
		}
	default:
		return fmt.Errorf("unknown directive %q", r.Directive)
	}
	return nil
}

func (r Routing) String() string {
	if r.Directive == RouteNext {
		return "next"
	}
	if r.Slot > 0 {
		return fmt.Sprintf("%s(%d)", r.Directive, r.Slot)
	}
	return string(r.Directive)
}
