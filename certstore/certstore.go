/*
Package certstore stores medical certificates attached to sick leave.

PURPOSE:
  Keeps uploaded certificate files outside the database. The sick_leave row
  only records the object key; the bytes live in a local directory or an
  S3 bucket (any S3-compatible service via a custom endpoint).

KEYS:
  certificates/<uuid><ext>, ext lowercased from the uploaded file name.
  Only PDF and common image types are accepted.

BACKENDS:
  local: files under Config.LocalDir
  s3:    objects in Config.S3.Bucket

SEE ALSO:
  - api/handlers.go: upload / download endpoints
  - config/config.go: certificates.* keys
*/
package certstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// KeyPrefix is prepended to every certificate object key.
const KeyPrefix = "certificates/"

// ErrUnsupportedType is returned for files that are not PDF or images.
var ErrUnsupportedType = errors.New("unsupported certificate file type")

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Object is a stored certificate opened for reading. Callers close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store is a certificate backend.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string   `mapstructure:"backend"` // local | s3
	LocalDir string   `mapstructure:"local_dir"`
	S3       S3Config `mapstructure:"s3"`
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown certificate backend %q", cfg.Backend)
	}
}

// NewKey returns a fresh object key for an uploaded file name, and the
// content type implied by its extension.
func NewKey(filename string) (key, contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := contentTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return KeyPrefix + uuid.NewString() + ext, ct, nil
}

// ContentTypeFor guesses the content type of a stored key.
func ContentTypeFor(key string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func validKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && !strings.Contains(key, "..") && !strings.ContainsAny(key, "\\\x00")
}
