// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// Common key prefixes
const (
	// Entity prefixes
	KeyPrefixWebhookEvent     = "webhook-event"
	KeyPrefixAttendanceRecord = "attendance-record"

	// Index prefixes
	KeyPrefixIndex        = "index"
	KeyPrefixIndexMeeting = "meeting"
)

// KeyBuilder provides utilities for building consistent NATS KV keys
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an optional prefix
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
	}
}

// EntityKeyEncoded builds the encoded key of an entity; it decodes to
// "/[prefix/]webhook-event/uid-123".
func (kb *KeyBuilder) EntityKeyEncoded(entityType, uid string) string {
	return kb.applyPrefix(fmt.Sprintf("%s/%s", entityType, uid), true)
}

// MeetingIndexKeyEncoded builds the encoded index key linking an entity to a
// meeting ("index/meeting/<meeting id>/<uid>")
func (kb *KeyBuilder) MeetingIndexKeyEncoded(meetingID int64, entityUID string) string {
	return kb.applyPrefix(fmt.Sprintf("%s/%s/%d/%s", KeyPrefixIndex, KeyPrefixIndexMeeting, meetingID, entityUID), true)
}

// MeetingIndexPrefix is the decoded prefix of every index key of a meeting.
func (kb *KeyBuilder) MeetingIndexPrefix(meetingID int64) string {
	return "/" + kb.applyPrefix(KeyPrefixIndex+"/"+KeyPrefixIndexMeeting+"/"+strconv.FormatInt(meetingID, 10)+"/", false)
}

// EntityPrefix is the decoded prefix of every key of an entity type.
func (kb *KeyBuilder) EntityPrefix(entityType string) string {
	return "/" + kb.applyPrefix(entityType+"/", false)
}

// applyPrefix adds the builder's prefix if one is set
func (kb *KeyBuilder) applyPrefix(key string, encode bool) string {
	fullKey := key
	if kb.prefix != "" {
		fullKey = fmt.Sprintf("%s/%s", kb.prefix, key)
	}

	if !encode {
		return fullKey
	}
	encodedKey, err := kb.EncodeKey(fullKey)
	if err != nil {
		slog.Error("error encoding key", logging.ErrKey, err, "key", fullKey)
		return fullKey
	}
	return encodedKey
}

// EncodeKey encodes a key for NATS KV store.
// From https://github.com/ripienaar/encodedkv
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func (kb *KeyBuilder) EncodeKey(key string) (string, error) {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	res := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}
		res = append(res, base64.StdEncoding.EncodeToString([]byte(part)))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "."), nil
}

// DecodeKey reverses EncodeKey, returning the key with a leading "/".
func (kb *KeyBuilder) DecodeKey(key string) (string, error) {
	if key == "" {
		return "", nats.ErrInvalidKey
	}

	parts := strings.Split(key, ".")
	res := make([]string, 0, len(parts))
	for _, part := range parts {
		k, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return "", err
		}
		res = append(res, string(k))
	}

	return "/" + strings.Join(res, "/"), nil
}

// lastSegment returns the part of a decoded key after its final "/".
func lastSegment(key string) string {
	return key[strings.LastIndex(key, "/")+1:]
}
