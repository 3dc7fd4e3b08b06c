// Package blob сохраняет изображения должников. Inline кодирует картинку
// в data URL прямо в запись, S3 кладёт объект в бакет и возвращает публичную ссылку.
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnsupportedType возвращается для содержимого, которое не является изображением.
var ErrUnsupportedType = errors.New("unsupported content type")

// Inline возвращает изображение как base64 data URL.
type Inline struct{}

// NewInline создаёт inline-хранилище.
func NewInline() *Inline {
	return &Inline{}
}

// UploadAsset кодирует данные в data URL.
func (Inline) UploadAsset(_ context.Context, data []byte, contentType string) (string, error) {
	const op = "blob.Inline.UploadAsset"
	ct, err := imageContentType(data, contentType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// imageContentType уточняет тип содержимого по первым байтам и проверяет, что это изображение.
func imageContentType(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty body", ErrUnsupportedType)
	}
	ct := declared
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return ct, nil
}
