package ecovolter

import (
	"errors"
	"fmt"
)

var (
	// ErrApi is the base of every error returned by the client.
	ErrApi = errors.New("ecovolter api error")
	// ErrCommunication covers timeouts, unreachable hosts and non-2xx responses.
	ErrCommunication = fmt.Errorf("%w: communication", ErrApi)
	// ErrAuthentication is returned when the charger answers 401 or 403.
	ErrAuthentication = fmt.Errorf("%w: authentication", ErrApi)
)

type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

func IsCommunication(err error) bool {
	return errors.Is(err, ErrCommunication)
}
