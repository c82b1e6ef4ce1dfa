package domain

import (
	"errors"
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
)

var ErrUnexpectedResponse = errors.New("unexpected actor response")

type ActorRef actor.PID

func (r *ActorRef) PID() *actor.PID {
	return (*actor.PID)(r)
}

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

// AwaitResponse takes the result of a future and returns it as T. An error
// carried inside the response is returned as the error.
func AwaitResponse[T ActorResponse](res any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	resp, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedResponse, res)
	}
	return resp, resp.GetResponseError()
}
