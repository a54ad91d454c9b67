package service

import (
	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/repo"
)

// Cache keys: operation tag + identifying parameters. Invalidation works on
// prefixes, so tag helpers double as invalidation targets.

func roomDetailKey(roomID string) string { return cache.Key("room", roomID) }
func roomOrdersKey(roomID string) string { return cache.Key("orders", roomID) }

func userRoomsKey(userID uint, f repo.RoomFilter) string {
	return cache.Key("userRooms", userID, f)
}
func userRoomsTag(userID uint) string   { return cache.Key("userRooms", userID) }
func joinedRoomsKey(userID uint) string { return cache.Key("joinedRooms", userID) }
func spendingKey(userID uint) string    { return cache.Key("spending", userID) }
func methodsKey(userID uint) string     { return cache.Key("paymentMethods", userID) }
func profilesKey(ids []uint) string     { return cache.Key("profiles", ids) }

const (
	joinedRoomsAll = "talangin:joinedRooms"
	profilesAll    = "talangin:profiles"
)

// Invalidation sets, one per mutation. Declared here rather than inline so
// the full invalidation surface of the layer is reviewable in one place.

func invalidateOnRoomCreate(runnerID uint) []string {
	return []string{userRoomsTag(runnerID)}
}

func invalidateOnRoomUpdate(roomID string, runnerID uint) []string {
	return []string{roomDetailKey(roomID), userRoomsTag(runnerID)}
}

func invalidateOnRoomDelete(roomID string, runnerID uint) []string {
	return []string{roomDetailKey(roomID), userRoomsTag(runnerID), joinedRoomsAll}
}

func invalidateOnJoin(roomID string, userID uint) []string {
	return []string{roomDetailKey(roomID), joinedRoomsKey(userID)}
}

func invalidateOnPayment(roomID string) []string {
	return []string{roomDetailKey(roomID), roomOrdersKey(roomID)}
}

func invalidateOnItemChange(roomID string, ownerID uint) []string {
	return []string{roomOrdersKey(roomID), roomDetailKey(roomID), spendingKey(ownerID)}
}

func invalidateOnMethodChange(userID uint) []string {
	return []string{methodsKey(userID)}
}

func invalidateOnProfileChange() []string {
	return []string{profilesAll}
}
