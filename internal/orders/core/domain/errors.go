// Package domain holds the error taxonomy shared by the orchestrator and
// its adapters. Three failure kinds cross the core's boundary:
//
//   - remote-call failure: an out-of-process request failed (transport or
//     remote-side error); the original payload is preserved for the caller.
//   - integrity failure: a remote response succeeded but does not cover all
//     requested keys, detected locally after the call.
//   - not-found: a lookup by id matched nothing.
//
// The core performs no retries and no local recovery; every failure is
// surfaced with enough structure to be translated at the transport edge.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrPaidViaStatusChange is returned when a generic status transition
// attempts to set PAID. Orders become PAID only through payment
// confirmation, which also records the payment reference and receipt.
var ErrPaidViaStatusChange = errors.New("PAID is reachable only through payment confirmation")

// RemoteCallError reports a failed out-of-process request. Status carries
// the remote HTTP status when one was received, 0 on transport failures.
type RemoteCallError struct {
	Service string
	Status  int
	Err     error
}

func (e *RemoteCallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s service returned %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s service call failed: %v", e.Service, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// IntegrityError reports a catalog response that omits one or more of the
// requested product ids. It is distinct from RemoteCallError so a data
// inconsistency is never mistaken for a transport outage.
type IntegrityError struct {
	Missing []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog response missing products: %s", strings.Join(e.Missing, ", "))
}
