package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/errs"
	"github.com/talangin/talangin/internal/models"
)

// RoomFilter narrows a room listing. Zero values mean "no constraint".
type RoomFilter struct {
	Search     string     `json:"search,omitempty"`
	Platform   string     `json:"platform,omitempty"`
	Restaurant string     `json:"restaurant,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

type RoomDetail struct {
	Room         models.Room              `json:"room"`
	Participants []models.RoomParticipant `json:"participants"`
}

type RoomUpdate struct {
	Title      *string    `json:"title"`
	FinalTotal *float64   `json:"final_total"`
	Status     *string    `json:"status"`
	OrderTime  *time.Time `json:"order_time"`
}

func (r *Repo) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room.Title == "" {
		return nil, fmt.Errorf("%w: title required", errs.ErrValidation)
	}
	if room.RunnerID == 0 {
		return nil, fmt.Errorf("%w: runner required", errs.ErrValidation)
	}
	room.ID = uuid.New().String()
	room.Status = models.RoomStatusOpen
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	if err := r.DB.WithContext(ctx).Create(room).Error; err != nil {
		return nil, dbErr(err)
	}
	return room, nil
}

func (r *Repo) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	id, err := parseID(roomID)
	if err != nil {
		return nil, err
	}
	var room models.Room
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, dbErr(err)
	}
	return &room, nil
}

func (r *Repo) GetRoomWithParticipants(ctx context.Context, roomID string) (*RoomDetail, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var parts []models.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("room_id = ?", room.ID).
		Order("joined_at ASC").
		Find(&parts).Error; err != nil {
		return nil, dbErr(err)
	}
	return &RoomDetail{Room: *room, Participants: parts}, nil
}

func (r *Repo) ListUserRooms(ctx context.Context, userID uint, f RoomFilter) ([]models.Room, error) {
	q := r.DB.WithContext(ctx).Model(&models.Room{}).Where("runner_id = ?", userID)

	if f.Search != "" {
		pat := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(restaurant) LIKE ? OR LOWER(platform) LIKE ?", pat, pat, pat)
	}
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if f.Restaurant != "" {
		q = q.Where("restaurant = ?", f.Restaurant)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", endOfDay(*f.To))
	}

	var rooms []models.Room
	if err := q.Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, dbErr(err)
	}
	return rooms, nil
}

func (r *Repo) ListJoinedRooms(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.DB.WithContext(ctx).
		Joins("JOIN room_participants ON room_participants.room_id = rooms.id").
		Where("room_participants.user_id = ? AND rooms.runner_id <> ?", userID, userID).
		Order("rooms.created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, dbErr(err)
	}
	return rooms, nil
}

// UpdateRoom re-fetches the room and compares the caller against the stored
// runner before touching anything. An ownership mismatch is unauthorized, not
// not-found.
func (r *Repo) UpdateRoom(ctx context.Context, roomID string, callerID uint, upd RoomUpdate) (*models.Room, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.RunnerID != callerID {
		return nil, fmt.Errorf("%w: only the runner may update the room", errs.ErrUnauthorized)
	}

	if upd.Title != nil {
		if *upd.Title == "" {
			return nil, fmt.Errorf("%w: title required", errs.ErrValidation)
		}
		room.Title = *upd.Title
	}
	if upd.FinalTotal != nil {
		room.FinalTotal = upd.FinalTotal
	}
	if upd.OrderTime != nil {
		room.OrderTime = upd.OrderTime
	}
	if upd.Status != nil {
		if *upd.Status != models.RoomStatusOpen && *upd.Status != models.RoomStatusClosed {
			return nil, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, *upd.Status)
		}
		room.Status = *upd.Status
	}

	if err := r.DB.WithContext(ctx).Save(room).Error; err != nil {
		return nil, dbErr(err)
	}
	return room, nil
}

func (r *Repo) DeleteRoom(ctx context.Context, roomID string, callerID uint) error {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.RunnerID != callerID {
		return fmt.Errorf("%w: only the runner may delete the room", errs.ErrUnauthorized)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("participant_id IN (?)",
				tx.Model(&models.RoomParticipant{}).Select("id").Where("room_id = ?", room.ID)).
			Delete(&models.OrderItem{}).Error; err != nil {
			return dbErr(err)
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.RoomParticipant{}).Error; err != nil {
			return dbErr(err)
		}
		if err := tx.Delete(&models.Room{}, "id = ?", room.ID).Error; err != nil {
			return dbErr(err)
		}
		return nil
	})
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}
