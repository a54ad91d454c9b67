// Package service wraps the resource access functions with the query cache,
// the invalidation sets, and change-event publishing. Reads probe the cache
// first; mutations hit the database, drop the declared key prefixes, and
// announce the change on the room's realtime channel and the event log.
package service

import (
	"context"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/events"
	"github.com/talangin/talangin/internal/logging"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/realtime"
	"github.com/talangin/talangin/internal/repo"
)

// RoomIndexer mirrors rooms into the search index. Nil disables indexing.
type RoomIndexer interface {
	IndexRoom(ctx context.Context, room models.Room) error
	DeleteRoom(ctx context.Context, roomID string) error
}

type Rooms struct {
	Repo   *repo.Repo
	Cache  *cache.Cache
	Events events.Publisher
	Hub    *realtime.Hub
	Index  RoomIndexer
}

// publish fans a mutation out to the realtime hub and the kafka event log.
// Failures are logged, never surfaced: the database write already succeeded.
func (s *Rooms) publish(ctx context.Context, roomID string, kind realtime.Kind, evType string, payload any) {
	if s.Hub != nil {
		s.Hub.Publish(realtime.Event{Kind: kind, RoomID: roomID, Payload: payload})
	}
	if s.Events != nil {
		event := map[string]any{"type": evType, "room_id": roomID, "payload": payload}
		if err := s.Events.PublishEvent(ctx, roomID, event); err != nil {
			logging.FromContext(ctx).Error("kafka publish failed", "type", evType, "error", err)
		}
	}
}

func (s *Rooms) invalidate(ctx context.Context, prefixes []string) {
	if err := s.Cache.Invalidate(ctx, prefixes...); err != nil {
		logging.FromContext(ctx).Error("cache invalidation failed", "prefixes", prefixes, "error", err)
	}
}

func (s *Rooms) index(ctx context.Context, room models.Room) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexRoom(ctx, room); err != nil {
		logging.FromContext(ctx).Error("room indexing failed", "room_id", room.ID, "error", err)
	}
}

func (s *Rooms) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	created, err := s.Repo.CreateRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnRoomCreate(created.RunnerID))
	s.index(ctx, *created)
	s.publish(ctx, created.ID, realtime.KindStatus, "room_created", created)
	return created, nil
}

func (s *Rooms) Get(ctx context.Context, roomID string) (*repo.RoomDetail, error) {
	key := roomDetailKey(roomID)
	var cached repo.RoomDetail
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		logging.FromContext(ctx).Warn("cache read failed", "key", key, "error", err)
	}

	detail, err := s.Repo.GetRoomWithParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, detail); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return detail, nil
}

func (s *Rooms) ListMine(ctx context.Context, userID uint, f repo.RoomFilter) ([]models.Room, error) {
	key := userRoomsKey(userID, f)
	var cached []models.Room
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	rooms, err := s.Repo.ListUserRooms(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, rooms); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return rooms, nil
}

func (s *Rooms) ListJoined(ctx context.Context, userID uint) ([]models.Room, error) {
	key := joinedRoomsKey(userID)
	var cached []models.Room
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	rooms, err := s.Repo.ListJoinedRooms(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, rooms); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return rooms, nil
}

func (s *Rooms) Update(ctx context.Context, roomID string, callerID uint, upd repo.RoomUpdate) (*models.Room, error) {
	room, err := s.Repo.UpdateRoom(ctx, roomID, callerID, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnRoomUpdate(room.ID, room.RunnerID))
	s.index(ctx, *room)
	s.publish(ctx, room.ID, realtime.KindStatus, "room_updated", room)
	return room, nil
}

func (s *Rooms) Delete(ctx context.Context, roomID string, callerID uint) error {
	if err := s.Repo.DeleteRoom(ctx, roomID, callerID); err != nil {
		return err
	}
	s.invalidate(ctx, invalidateOnRoomDelete(roomID, callerID))
	if s.Index != nil {
		if err := s.Index.DeleteRoom(ctx, roomID); err != nil {
			logging.FromContext(ctx).Error("room deindexing failed", "room_id", roomID, "error", err)
		}
	}
	s.publish(ctx, roomID, realtime.KindStatus, "room_deleted", nil)
	return nil
}

func (s *Rooms) Join(ctx context.Context, roomID string, userID uint) (*models.RoomParticipant, error) {
	part, err := s.Repo.JoinRoom(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnJoin(part.RoomID, userID))
	s.publish(ctx, part.RoomID, realtime.KindParticipants, "participant_joined", part)
	return part, nil
}

func (s *Rooms) ConfirmPayment(ctx context.Context, roomID string, userID uint, methodID string) (*models.RoomParticipant, error) {
	part, err := s.Repo.ConfirmPayment(ctx, roomID, userID, methodID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnPayment(part.RoomID))
	s.publish(ctx, part.RoomID, realtime.KindParticipants, "payment_confirmed", part)
	return part, nil
}

func (s *Rooms) Orders(ctx context.Context, roomID string) ([]repo.ParticipantOrder, error) {
	key := roomOrdersKey(roomID)
	var cached []repo.ParticipantOrder
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	orders, err := s.Repo.ListRoomOrderDetails(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, orders); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return orders, nil
}

func (s *Rooms) CreateItem(ctx context.Context, callerID uint, in repo.ItemInput) (*models.OrderItem, error) {
	item, err := s.Repo.CreateOrderItem(ctx, callerID, in)
	if err != nil {
		return nil, err
	}
	owner := in.ForUserID
	if owner == 0 {
		owner = callerID
	}
	s.invalidate(ctx, invalidateOnItemChange(in.RoomID, owner))
	s.publish(ctx, in.RoomID, realtime.KindOrderItems, "item_created", item)
	return item, nil
}

func (s *Rooms) UpdateItem(ctx context.Context, itemID string, callerID uint, upd repo.ItemUpdate) (*models.OrderItem, error) {
	item, err := s.Repo.UpdateOrderItem(ctx, itemID, callerID, upd)
	if err != nil {
		return nil, err
	}
	_, part, room, err := s.Repo.ResolveItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnItemChange(room.ID, part.UserID))
	s.publish(ctx, room.ID, realtime.KindOrderItems, "item_updated", item)
	return item, nil
}

func (s *Rooms) DeleteItem(ctx context.Context, itemID string, callerID uint) error {
	part, room, err := s.Repo.DeleteOrderItem(ctx, itemID, callerID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, invalidateOnItemChange(room.ID, part.UserID))
	s.publish(ctx, room.ID, realtime.KindOrderItems, "item_deleted", map[string]string{"id": itemID})
	return nil
}

// RunnerMethods exposes the runner's payment methods to room members.
// Not cached: the result carries decrypted account identifiers and the
// membership check depends on the caller.
func (s *Rooms) RunnerMethods(ctx context.Context, roomID string, callerID uint) ([]repo.RunnerPaymentMethod, error) {
	return s.Repo.GetRunnerPaymentMethods(ctx, roomID, callerID)
}
