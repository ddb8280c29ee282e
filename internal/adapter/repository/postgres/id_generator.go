package postgres

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates item IDs. A ULID is 26 characters, matching the
// items.id column, and sorts by creation time so items created in the same
// request keep their order.
type ULIDGenerator struct {
	now func() time.Time
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{now: time.Now}
}

// Generate returns a new item ID.
func (g *ULIDGenerator) Generate() string {
	return ulid.MustNew(ulid.Timestamp(g.now()), ulid.DefaultEntropy()).String()
}
