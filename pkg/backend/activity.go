package backend

import (
	"context"
	"encoding/json"

	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/realtime"
	"github.com/printnow/portal/pkg/utils"
)

// Metadata is the free form payload of an activity.
type Metadata map[string]interface{}

// logActivity appends to a board's audit trail in the background. cardID
// and userID may be zero.
func (d *Backend) logActivity(boardID, cardID, userID int64, action proto.Action, meta Metadata) {
	if meta == nil {
		meta = Metadata{}
	}
	d.async("activity", func(ctx context.Context) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return err //nolint:wrapcheck
		}
		return d.store.CreateActivity(ctx, d.db, models.Activity{ //nolint:wrapcheck
			BoardID:  boardID,
			CardID:   toNullInt64(cardID),
			UserID:   toNullInt64(userID),
			Action:   string(action),
			Metadata: string(data),
		})
	})
}

// notify tells the board's subscribers that entity changed. It also bumps
// the board in the most recently updated ordering.
func (d *Backend) notify(boardID int64, entity, action string) {
	ev := realtime.Event{BoardID: boardID, Entity: entity, Action: action}
	d.async("notify", func(ctx context.Context) error {
		if err := d.store.TouchBoard(ctx, d.db, boardID); err != nil {
			d.logger.Warn("failed to touch board", "board", boardID, "err", err)
		}
		return d.broker.Publish(ctx, ev) //nolint:wrapcheck
	})
}

// notifyCustomer tells a customer's portal streams that a board was shared
// with or unshared from them.
func (d *Backend) notifyCustomer(customerID, boardID int64, action string) {
	ev := realtime.Event{BoardID: boardID, CustomerID: customerID, Entity: "customer", Action: action}
	d.async("notify", func(ctx context.Context) error {
		return d.broker.Publish(ctx, ev) //nolint:wrapcheck
	})
}

// ListActivity returns a page of a board's activities, newest first.
func (d *Backend) ListActivity(ctx context.Context, user proto.User, in proto.ListActivityInput) (proto.ActivityPage, error) {
	page := proto.ActivityPage{Items: []proto.Activity{}}
	if err := utils.Validate(in); err != nil {
		return page, err //nolint:wrapcheck
	}
	if in.Limit == 0 {
		in.Limit = proto.DefaultActivityLimit
	}
	var cursor int64
	if in.Cursor != nil {
		cursor = *in.Cursor
	}

	if _, _, err := d.boardAccess(ctx, d.db, user, in.BoardID); err != nil {
		return page, err
	}

	// Fetch one extra entry to learn where the next page starts.
	ms, err := d.store.ListActivitiesByBoard(ctx, d.db, in.BoardID, cursor, in.Limit+1)
	if err != nil {
		return page, dbErr(err, nil)
	}
	if len(ms) > in.Limit {
		next := ms[in.Limit].ID
		page.NextCursor = &next
		ms = ms[:in.Limit]
	}
	for _, m := range ms {
		page.Items = append(page.Items, toActivity(m))
	}
	return page, nil
}
