package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/realtime"
	"github.com/talangin/talangin/internal/repo"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomParticipant{},
		&models.OrderItem{},
		&models.PaymentMethod{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type testEnv struct {
	Repo  *repo.Repo
	Cache *cache.Cache
	Hub   *realtime.Hub
	Redis *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cipher, err := repo.NewCipher("test-encryption-key")
	require.NoError(t, err)

	return &testEnv{
		Repo:  repo.New(InitTestDB(t), cipher),
		Cache: cache.New(rdb, time.Minute),
		Hub:   realtime.NewHub(),
		Redis: mr,
	}
}

func (env *testEnv) rooms() *Rooms {
	return &Rooms{Repo: env.Repo, Cache: env.Cache, Hub: env.Hub}
}
