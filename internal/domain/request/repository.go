package request

import "context"

// ItemRequestRepository defines persistence operations for item requests.
type ItemRequestRepository interface {
	Save(ctx context.Context, req *ItemRequest) (*ItemRequest, error)
	FindByID(ctx context.Context, id int64) (*ItemRequest, error)
	// FindByRequesterID returns the user's own requests, newest first.
	FindByRequesterID(ctx context.Context, requesterID int64) ([]*ItemRequest, error)
	// FindOthers returns requests made by anyone but userID, newest first, skipping
	// offset rows and returning at most limit.
	FindOthers(ctx context.Context, userID int64, offset, limit int) ([]*ItemRequest, error)
}
