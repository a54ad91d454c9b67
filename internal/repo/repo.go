// Package repo contains the resource access functions: one function per
// remote operation, each translating a typed input into a single database
// round trip and normalizing the error into the errs taxonomy.
package repo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/errs"
)

type Repo struct {
	DB     *gorm.DB
	Cipher *Cipher
}

func New(db *gorm.DB, cipher *Cipher) *Repo {
	return &Repo{DB: db, Cipher: cipher}
}

// parseID rejects malformed identifiers before any query is issued.
func parseID(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: invalid identifier %q", errs.ErrValidation, id)
	}
	return id, nil
}

func dbErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return fmt.Errorf("%w: %v", errs.ErrRemote, err)
}
