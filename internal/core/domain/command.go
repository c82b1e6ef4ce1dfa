package domain

import "fmt"

// ChargerRequest is any message routed to the charger actor.
type ChargerRequest interface {
	ActorRequest
	ChargerCommand() string
}

type ChargerRequestMixIn struct {
	ActorRequestMixIn
}

func (r ChargerRequestMixIn) ChargerCommand() string {
	return fmt.Sprintf("%T", r)
}

// Charger commands

type RefreshRequest struct {
	ChargerRequestMixIn
	Reason string
}

type RefreshResponse struct {
	ActorResponseMixIn
	Snapshot *Snapshot
}

type WritePointRequest struct {
	ChargerRequestMixIn
	PointId string
	Value   any
}

type WritePointResponse struct {
	ActorResponseMixIn
	PointId string
	Sent    any
}

type GetPointsRequest struct {
	ChargerRequestMixIn
	// empty means every point
	PointId string
}

type GetPointsResponse struct {
	ActorResponseMixIn
	Points    []PointValue
	UpdatedAt string
}

type GetDeviceInfoRequest struct {
	ChargerRequestMixIn
}

type GetDeviceInfoResponse struct {
	ActorResponseMixIn
	Serial   string
	Points   []Point
	Snapshot *Snapshot
}

// ensure interface compliance
var _ ChargerRequest = (*WritePointRequest)(nil)
var _ ChargerRequest = (*RefreshRequest)(nil)
