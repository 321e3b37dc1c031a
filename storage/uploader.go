package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}

// RosterArchiveKey builds the object key under which an uploaded roster CSV is kept,
// e.g. rosters/2025/06/14/090000-players.csv.
func RosterArchiveKey(uploadedAt time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		base = "roster.csv"
	}
	utc := uploadedAt.UTC()
	return fmt.Sprintf("rosters/%s/%s-%s", utc.Format("2006/01/02"), utc.Format("150405"), base)
}
