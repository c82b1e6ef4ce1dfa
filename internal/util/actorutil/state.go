package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
)

// ActorWithStates switches an actor between named states and remembers
// which one is active.
type ActorWithStates struct {
	Behavior actor.Behavior
	current  ActorState
}

type ActorState interface {
	Name() string
	Receive(actor.Context)
}

func NewActorWithStates(initial ActorState) ActorWithStates {
	s := ActorWithStates{Behavior: actor.NewBehavior()}
	if initial != nil {
		s.Become(initial)
	}
	return s
}

func (s *ActorWithStates) Become(state ActorState) {
	s.current = state
	s.Behavior.Become(state.Receive)
}

// StateName is empty until the first Become.
func (s *ActorWithStates) StateName() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name()
}
