// Package access models membership requests and the auto-approval decision
// produced for them.
package access

import (
	"fmt"
	"time"

	"accessgate/internal/shared/biztime"
)

// Status is the terminal resolution of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a pending membership request. It is immutable once created
// except for its resolution, which transitions away from pending exactly
// once.
type Request struct {
	id               uint
	requesterID      uint
	groupID          uint
	requestOwnership bool
	requestReason    string
	requestEndingAt  *time.Time
	status           Status
	resolutionReason string
	resolvedAt       *time.Time
	createdAt        time.Time
}

// NewRequest creates a pending request.
func NewRequest(requesterID, groupID uint, requestOwnership bool, requestReason string, requestEndingAt *time.Time) (*Request, error) {
	if requesterID == 0 {
		return nil, fmt.Errorf("requester ID is required")
	}
	if groupID == 0 {
		return nil, fmt.Errorf("group ID is required")
	}
	return &Request{
		requesterID:      requesterID,
		groupID:          groupID,
		requestOwnership: requestOwnership,
		requestReason:    requestReason,
		requestEndingAt:  requestEndingAt,
		status:           StatusPending,
		createdAt:        biztime.NowUTC(),
	}, nil
}

// ReconstructRequest reconstructs a request from persistence.
func ReconstructRequest(
	id uint,
	requesterID, groupID uint,
	requestOwnership bool,
	requestReason string,
	requestEndingAt *time.Time,
	status Status,
	resolutionReason string,
	resolvedAt *time.Time,
	createdAt time.Time,
) *Request {
	return &Request{
		id:               id,
		requesterID:      requesterID,
		groupID:          groupID,
		requestOwnership: requestOwnership,
		requestReason:    requestReason,
		requestEndingAt:  requestEndingAt,
		status:           status,
		resolutionReason: resolutionReason,
		resolvedAt:       resolvedAt,
		createdAt:        createdAt,
	}
}

func (r *Request) ID() uint                    { return r.id }
func (r *Request) RequesterID() uint           { return r.requesterID }
func (r *Request) GroupID() uint               { return r.groupID }
func (r *Request) RequestOwnership() bool      { return r.requestOwnership }
func (r *Request) RequestReason() string       { return r.requestReason }
func (r *Request) RequestEndingAt() *time.Time { return r.requestEndingAt }
func (r *Request) Status() Status              { return r.status }
func (r *Request) ResolutionReason() string    { return r.resolutionReason }
func (r *Request) ResolvedAt() *time.Time      { return r.resolvedAt }
func (r *Request) CreatedAt() time.Time        { return r.createdAt }

// SetID sets the request ID (only for persistence layer use)
func (r *Request) SetID(id uint) { r.id = id }

// IsPending reports whether the request has no resolution yet.
func (r *Request) IsPending() bool { return r.status == StatusPending }

// Approve records an approval resolution.
func (r *Request) Approve(reason string) error {
	return r.resolve(StatusApproved, reason)
}

// Reject records a rejection resolution.
func (r *Request) Reject(reason string) error {
	return r.resolve(StatusRejected, reason)
}

func (r *Request) resolve(status Status, reason string) error {
	if r.status != StatusPending {
		return fmt.Errorf("request %d already resolved as %s", r.id, r.status)
	}
	now := biztime.NowUTC()
	r.status = status
	r.resolutionReason = reason
	r.resolvedAt = &now
	return nil
}
