package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks provisioning lifecycle moves with looplab/fsm.
// looplab machines are stateful, so Apply builds a throwaway machine seeded
// with the tenant's stored status; the event table is shared and read-only.
type Validator struct {
	events loopfsm.Events
}

// New creates a validator for the given transitions, or for
// domain.Transitions when none are passed.
func New(transitions ...domain.Transition) *Validator {
	if len(transitions) == 0 {
		transitions = domain.Transitions
	}
	return &Validator{events: toEvents(transitions)}
}

// toEvents folds transitions sharing an event and destination into one
// EventDesc with several sources, keeping first-seen order.
func toEvents(transitions []domain.Transition) loopfsm.Events {
	var out loopfsm.Events
	index := make(map[[2]string]int)

	for _, t := range transitions {
		k := [2]string{string(t.Event), string(t.Dst)}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, loopfsm.EventDesc{Name: k[0], Dst: k[1]})
			i = len(out) - 1
		}
		out[i].Src = append(out[i].Src, string(t.Src))
	}
	return out
}

// Apply returns the status reached by firing event from current, or a
// *domain.TransitionError when the lifecycle forbids it.
func (v *Validator) Apply(ctx context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	err := machine.Event(ctx, string(event))
	switch {
	case err == nil:
		return domain.Status(machine.Current()), nil
	case errors.As(err, new(loopfsm.InvalidEventError)),
		errors.As(err, new(loopfsm.UnknownEventError)),
		errors.As(err, new(loopfsm.NoTransitionError)):
		return "", &domain.TransitionError{Event: event, Current: current}
	default:
		return "", err
	}
}
