package item

import "context"

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	FindByOwnerID(ctx context.Context, ownerID int64) ([]*Item, error)
	// Search returns available items whose name or description contains text, ignoring case.
	Search(ctx context.Context, text string) ([]*Item, error)
	// FindByRequestIDs returns items listed in answer to the given requests, grouped by request.
	FindByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*Item, error)
	Save(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) error
}
