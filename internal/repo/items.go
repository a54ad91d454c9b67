package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talangin/talangin/internal/errs"
	"github.com/talangin/talangin/internal/models"
)

type ItemInput struct {
	RoomID    string  `json:"room_id"`
	ForUserID uint    `json:"for_user_id"` // 0 means the caller themselves
	Name      string  `json:"name"`
	Quantity  uint    `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Notes     string  `json:"notes"`
}

type ItemUpdate struct {
	Name      *string  `json:"name"`
	Quantity  *uint    `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
	Notes     *string  `json:"notes"`
}

// ParticipantOrder is one participant's slice of a room order, the shape the
// room detail page renders.
type ParticipantOrder struct {
	Participant models.RoomParticipant `json:"participant"`
	Items       []models.OrderItem     `json:"items"`
	Subtotal    float64                `json:"subtotal"`
}

// CreateOrderItem adds a line item for the caller, or for another participant
// when the caller is the room's runner.
func (r *Repo) CreateOrderItem(ctx context.Context, callerID uint, in ItemInput) (*models.OrderItem, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: item name required", errs.ErrValidation)
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price must be >= 0", errs.ErrValidation)
	}

	room, err := r.GetRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}

	target := callerID
	if in.ForUserID != 0 && in.ForUserID != callerID {
		if callerID != room.RunnerID {
			return nil, fmt.Errorf("%w: only the runner may add items for others", errs.ErrUnauthorized)
		}
		target = in.ForUserID
	}

	var part models.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", room.ID, target).
		First(&part).Error; err != nil {
		return nil, dbErr(err)
	}

	item := models.OrderItem{
		ID:            uuid.New().String(),
		ParticipantID: part.ID,
		Name:          in.Name,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		Notes:         in.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, dbErr(err)
	}
	return &item, nil
}

// ResolveItem walks the two-hop relationship item -> participant -> room,
// the chain needed to decide who may touch the item.
func (r *Repo) ResolveItem(ctx context.Context, itemID string) (*models.OrderItem, *models.RoomParticipant, *models.Room, error) {
	id, err := parseID(itemID)
	if err != nil {
		return nil, nil, nil, err
	}

	var item models.OrderItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, nil, nil, dbErr(err)
	}
	var part models.RoomParticipant
	if err := r.DB.WithContext(ctx).Where("id = ?", item.ParticipantID).First(&part).Error; err != nil {
		return nil, nil, nil, dbErr(err)
	}
	var room models.Room
	if err := r.DB.WithContext(ctx).Where("id = ?", part.RoomID).First(&room).Error; err != nil {
		return nil, nil, nil, dbErr(err)
	}
	return &item, &part, &room, nil
}

func itemAuthorized(callerID uint, part *models.RoomParticipant, room *models.Room) bool {
	return callerID == part.UserID || callerID == room.RunnerID
}

func (r *Repo) UpdateOrderItem(ctx context.Context, itemID string, callerID uint, upd ItemUpdate) (*models.OrderItem, error) {
	item, part, room, err := r.ResolveItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !itemAuthorized(callerID, part, room) {
		return nil, fmt.Errorf("%w: not the item owner or room runner", errs.ErrUnauthorized)
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, fmt.Errorf("%w: item name required", errs.ErrValidation)
		}
		item.Name = *upd.Name
	}
	if upd.Quantity != nil {
		if *upd.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", errs.ErrValidation)
		}
		item.Quantity = *upd.Quantity
	}
	if upd.UnitPrice != nil {
		if *upd.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: unit price must be >= 0", errs.ErrValidation)
		}
		item.UnitPrice = *upd.UnitPrice
	}
	if upd.Notes != nil {
		item.Notes = *upd.Notes
	}

	if err := r.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, dbErr(err)
	}
	return item, nil
}

func (r *Repo) DeleteOrderItem(ctx context.Context, itemID string, callerID uint) (*models.RoomParticipant, *models.Room, error) {
	item, part, room, err := r.ResolveItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if !itemAuthorized(callerID, part, room) {
		return nil, nil, fmt.Errorf("%w: not the item owner or room runner", errs.ErrUnauthorized)
	}
	if err := r.DB.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", item.ID).Error; err != nil {
		return nil, nil, dbErr(err)
	}
	return part, room, nil
}

// ListRoomOrderDetails returns every participant of the room with their items
// and per-participant subtotal.
func (r *Repo) ListRoomOrderDetails(ctx context.Context, roomID string) ([]ParticipantOrder, error) {
	parts, err := r.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}

	out := make([]ParticipantOrder, 0, len(parts))
	for _, p := range parts {
		var items []models.OrderItem
		if err := r.DB.WithContext(ctx).
			Where("participant_id = ?", p.ID).
			Order("created_at ASC").
			Find(&items).Error; err != nil {
			return nil, dbErr(err)
		}
		var subtotal float64
		for _, it := range items {
			subtotal += float64(it.Quantity) * it.UnitPrice
		}
		out = append(out, ParticipantOrder{Participant: p, Items: items, Subtotal: subtotal})
	}
	return out, nil
}
