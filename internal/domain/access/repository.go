package access

import "context"

// Repository defines the interface for access request persistence.
type Repository interface {
	// GetByID retrieves a request by internal ID
	GetByID(ctx context.Context, id uint) (*Request, error)

	// Create inserts a new pending request
	Create(ctx context.Context, request *Request) error

	// Update persists a request's resolution
	Update(ctx context.Context, request *Request) error
}
