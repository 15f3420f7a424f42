package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/jo-hoe/godiary/internal/common"
)

type Entry struct {
	ID        int64     `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("entry content must not be blank: %w", common.ErrValidation)
	}
	return nil
}

// normalizeCreatedAt defaults a zero timestamp to now and truncates to the
// millisecond precision the stores persist.
func normalizeCreatedAt(createdAt time.Time) time.Time {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return fromMillis(toMillis(createdAt))
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

