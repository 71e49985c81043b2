package storage

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
)

const (
	// DefaultPageSize applies when a request leaves the size unset.
	DefaultPageSize = 50
	// MaxPageSize caps a single page.
	MaxPageSize = 500
)

// ClampPageSize applies the default and the cap.
func ClampPageSize(value int) int {
	if value <= 0 {
		value = DefaultPageSize
	}
	if value > MaxPageSize {
		value = MaxPageSize
	}
	return value
}

// cursor is the decoded form of a page token. The filter hash ties a token
// to the query that produced it.
type cursor struct {
	AfterSeq   int64  `json:"s"`
	FilterHash string `json:"f"`
}

// EncodePageToken builds the token for the page after afterSeq.
func EncodePageToken(afterSeq int64, filter string) (string, error) {
	data, err := json.Marshal(cursor{AfterSeq: afterSeq, FilterHash: filterHash(filter)})
	if err != nil {
		return "", fmt.Errorf("encode page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodePageToken returns the sequence a token resumes after. An empty
// token starts at the beginning.
func DecodePageToken(token, filter string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, invalidToken(err)
	}
	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, invalidToken(err)
	}
	if c.AfterSeq < 0 {
		return 0, invalidToken(fmt.Errorf("negative sequence %d", c.AfterSeq))
	}
	if c.FilterHash != filterHash(filter) {
		return 0, invalidToken(fmt.Errorf("token issued for a different filter"))
	}
	return c.AfterSeq, nil
}

func filterHash(filter string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(filter)))
	return hex.EncodeToString(sum[:8])
}

func invalidToken(cause error) error {
	return apperrors.Wrap(apperrors.CodeJournalInvalidPageToken, "invalid page token", cause)
}
