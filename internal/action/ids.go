package action

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator mints confirmation ids for staged actions.
// Implemented by TimeOwnerGenerator (production) and testutil.SequenceGenerator (tests).
type IDGenerator interface {
	Generate(owner string, issuedAt time.Time) string
}

// TimeOwnerGenerator forms ids from the owner and the issue time:
//
//	<owner-tag>-<issued-at, base36 millis>-<random>
//
// The owner tag is a short digest so the raw owner id is not exposed.
// The random suffix comes from a UUIDv4 and keeps two actions staged by
// the same owner in the same millisecond apart. Ids are not meant to be
// secret; resolve still checks ownership.
//
// Thread-safety: stateless, safe for concurrent use.
type TimeOwnerGenerator struct{}

// Generate implements IDGenerator.
func (TimeOwnerGenerator) Generate(owner string, issuedAt time.Time) string {
	sum := sha256.Sum256([]byte(owner))
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex.EncodeToString(sum[:4]) + "-" +
		strconv.FormatInt(issuedAt.UnixMilli(), 36) + "-" +
		random[:12]
}
