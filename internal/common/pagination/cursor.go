package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const cursorVersion = 1

// Cursor is a decoded pagination token. It names the position of the last
// item of the previous page, not an offset.
type Cursor struct {
	Mode SortMode
	Key  Key
}

// cursorPayload is the wire form of a cursor. Score is only present under
// relevance; created_at travels as UTC unix microseconds, the precision
// both stores keep.
type cursorPayload struct {
	Version   int      `json:"v"`
	Mode      SortMode `json:"m"`
	Score     *float64 `json:"s,omitempty"`
	CreatedAt int64    `json:"t"`
	TypeOrder int      `json:"o"`
	PrimaryID int64    `json:"i"`
}

// Encode returns the opaque token resuming a walk right after p.
func Encode(mode SortMode, p Projection) (string, error) {
	return EncodeKey(mode, p.Key())
}

// EncodeKey returns the opaque token resuming a walk right after k.
func EncodeKey(mode SortMode, k Key) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("encode cursor: unknown sort mode %q", mode)
	}
	payload := cursorPayload{
		Version:   cursorVersion,
		Mode:      mode,
		CreatedAt: k.CreatedAt.UTC().UnixMicro(),
		TypeOrder: k.TypeOrder,
		PrimaryID: k.PrimaryID,
	}
	if mode == SortRelevance {
		if math.IsNaN(k.Score) || math.IsInf(k.Score, 0) {
			return "", fmt.Errorf("encode cursor: score %v is not finite", k.Score)
		}
		score := k.Score
		payload.Score = &score
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses token for a request sorted by mode.
// A blank token means "start from the beginning" and yields (nil, nil).
func Decode(mode SortMode, token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalidCursor("cursor is not validly encoded")
	}

	var payload cursorPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, invalidCursor("cursor payload is malformed")
	}
	if payload.Version != cursorVersion {
		return nil, invalidCursor("cursor version is not supported")
	}
	if !payload.Mode.Valid() {
		return nil, invalidCursor("cursor sort mode is invalid")
	}
	if payload.Mode != mode {
		return nil, NewRequestError(ErrInvalidCursor, CodeCursorSortMismatch,
			fmt.Sprintf("invalid cursor: issued for sort %q, request uses %q", payload.Mode, mode))
	}
	if payload.PrimaryID <= 0 || payload.TypeOrder < 0 {
		return nil, invalidCursor("cursor position is invalid")
	}

	key := Key{
		CreatedAt: time.UnixMicro(payload.CreatedAt).UTC(),
		TypeOrder: payload.TypeOrder,
		PrimaryID: payload.PrimaryID,
	}
	if mode == SortRelevance {
		if payload.Score == nil {
			return nil, invalidCursor("cursor score is missing")
		}
		key.Score = *payload.Score
	}
	return &Cursor{Mode: mode, Key: key}, nil
}

func invalidCursor(msg string) *RequestError {
	return NewRequestError(ErrInvalidCursor, CodeInvalidCursor, "invalid cursor: "+msg)
}
