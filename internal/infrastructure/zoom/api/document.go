// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
)

// TextKey holds the raw body when it is neither JSON nor XML.
const TextKey = "text"

// xmlTextKey and xmlAttrPrefix name element text and attributes in decoded XML.
const (
	xmlTextKey    = "#text"
	xmlAttrPrefix = "@"
)

// Document is a dynamically shaped response body.
type Document map[string]any

// decodeDocument decodes body as a JSON object, then as XML, and finally
// wraps it as {"text": body}. It never fails.
func decodeDocument(ctx context.Context, body []byte) Document {
	trimmed := bytes.TrimSpace(body)

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var doc map[string]any
	if err := decoder.Decode(&doc); err == nil && doc != nil && !decoder.More() {
		return doc
	}

	if doc, err := decodeXMLDocument(trimmed); err == nil {
		slog.DebugContext(ctx, "zoom response decoded as XML")
		return doc
	}

	if len(trimmed) > 0 {
		slog.DebugContext(ctx, "zoom response is neither JSON nor XML, keeping raw text")
	}
	return Document{TextKey: string(body)}
}

// decodeXMLDocument converts an XML document to {root: content}. Elements
// holding only text become strings, repeated children become slices,
// attributes are keyed with "@" and mixed text with "#text".
func decodeXMLDocument(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			value, err := decodeXMLElement(decoder, t)
			if err != nil {
				return nil, err
			}
			return Document{t.Name.Local: value}, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, errors.New("text outside of the root element")
			}
		}
	}
}

func decodeXMLElement(decoder *xml.Decoder, start xml.StartElement) (any, error) {
	node := map[string]any{}
	for _, attr := range start.Attr {
		node[xmlAttrPrefix+attr.Name.Local] = attr.Value
	}

	var text strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			child, err := decodeXMLElement(decoder, t)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			switch existing := node[name].(type) {
			case nil:
				node[name] = child
			case []any:
				node[name] = append(existing, child)
			default:
				node[name] = []any{existing, child}
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if len(node) == 0 {
				if content == "" {
					return nil, nil
				}
				return content, nil
			}
			if content != "" {
				node[xmlTextKey] = content
			}
			return node, nil
		}
	}
}

// Require returns the value of a required top-level field.
func (d Document) Require(key string) (any, error) {
	value, ok := d[key]
	if !ok || value == nil {
		return nil, domain.NewValidationError(fmt.Sprintf("zoom response has no %q field", key), domain.ErrMissingField)
	}
	return value, nil
}

// decodeInto decodes a dynamic value into a typed struct or slice. Scalars are
// weakly typed so that XML strings and JSON numbers decode alike; RFC 3339
// strings decode into time.Time and blank strings into the zero time.
func decodeInto(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			blankStringToZeroTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return domain.NewValidationError("failed to decode zoom response", err)
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// blankStringToZeroTimeHook decodes "" as the zero time. Zoom sends an empty
// leave_time for participants still in the meeting.
func blankStringToZeroTimeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	if strings.TrimSpace(reflect.ValueOf(data).String()) == "" {
		return time.Time{}, nil
	}
	return data, nil
}
