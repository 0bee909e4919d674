package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds a unique key such as "clubs/12/logo-<uuid>.png".
func ObjectKey(entity string, id int, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%d/logo-%s%s", entity, id, uuid.NewString(), ext)
}

// ExtensionFromContentType maps an image content type to a file extension.
func ExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	}
	return "", fmt.Errorf("unsupported image content type: '%s'", contentType)
}
