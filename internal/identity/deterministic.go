package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const prefix = "sitepublish:"

// UUID derives a stable UUID from key with go-hashid, falling back to a SHA-1 name UUID.
// Callers namespace keys by entity type so ids never collide across tables.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// LocaleUUID identifies a locale row by its code, case-insensitively.
func LocaleUUID(code string) uuid.UUID {
	return UUID(prefix + "locale:" + strings.ToLower(strings.TrimSpace(code)))
}

// PageUUID identifies one localized variant of a page. An empty locale is the canonical
// variant.
func PageUUID(pageKey, locale string) uuid.UUID {
	return UUID(prefix + "page:" + strings.TrimSpace(pageKey) + ":" + strings.ToLower(strings.TrimSpace(locale)))
}

// MediaUUID identifies a media row by its key.
func MediaUUID(key string) uuid.UUID {
	return UUID(prefix + "media:" + strings.TrimSpace(key))
}
