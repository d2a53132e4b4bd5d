package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID builds a prefixed short id like "event_1a2b3c4d".
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:8]
}
