package domain

import (
	"strconv"
	"strings"
)

// Metadata is the free-form JSON object stored with a lead row.
type Metadata map[string]any

// String returns the value at key when it is a non-blank string.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return ""
}

func (m Metadata) object(key string) (Metadata, bool) {
	if m == nil {
		return nil, false
	}
	switch v := m[key].(type) {
	case map[string]any:
		return Metadata(v), true
	case Metadata:
		return v, true
	default:
		return nil, false
	}
}

func (m Metadata) firstOf(key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	case []string:
		if len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			return v[0]
		}
	}
	return ""
}

// TagSource records where a lead's primary tag was found.
type TagSource int

const (
	TagSourceNone TagSource = iota
	TagSourceTagsColumn
	TagSourceMetadataTag
	TagSourceMetadataTags
	TagSourceMetadataCurrentTags
	TagSourceLastEvent
	TagSourceConversation
)

func (s TagSource) String() string {
	switch s {
	case TagSourceTagsColumn:
		return "tags_column"
	case TagSourceMetadataTag:
		return "metadata.tag"
	case TagSourceMetadataTags:
		return "metadata.tags"
	case TagSourceMetadataCurrentTags:
		return "metadata.tags_atuais"
	case TagSourceLastEvent:
		return "metadata.ultimo_evento"
	case TagSourceConversation:
		return "conversation"
	default:
		return "none"
	}
}

// RawTag is a tag value together with the source it came from.
type RawTag struct {
	Source TagSource
	Value  string
}

// Present reports whether a tag was found.
func (t RawTag) Present() bool {
	return t.Source != TagSourceNone && t.Value != ""
}

// ExtractPrimaryTag resolves the lead's tag in priority order: the tags
// column, then metadata tag, tags[0], tags_atuais[0] and the last event tag.
func ExtractPrimaryTag(meta Metadata, currentTags []string) RawTag {
	if len(currentTags) > 0 && strings.TrimSpace(currentTags[0]) != "" {
		return RawTag{Source: TagSourceTagsColumn, Value: currentTags[0]}
	}
	if v := meta.String("tag"); v != "" {
		return RawTag{Source: TagSourceMetadataTag, Value: v}
	}
	if v := meta.firstOf("tags"); v != "" {
		return RawTag{Source: TagSourceMetadataTags, Value: v}
	}
	if v := meta.firstOf("tags_atuais"); v != "" {
		return RawTag{Source: TagSourceMetadataCurrentTags, Value: v}
	}
	for _, key := range []string{"ultimo_evento", "ultimoEvento"} {
		if event, ok := meta.object(key); ok {
			if v := event.String("tag"); v != "" {
				return RawTag{Source: TagSourceLastEvent, Value: v}
			}
		}
	}
	return RawTag{}
}

// ResolveTag returns the primary tag, or the conversation tag when the lead
// carries none.
func ResolveTag(meta Metadata, currentTags []string, conversationTag string) RawTag {
	if tag := ExtractPrimaryTag(meta, currentTags); tag.Present() {
		return tag
	}
	if strings.TrimSpace(conversationTag) != "" {
		return RawTag{Source: TagSourceConversation, Value: conversationTag}
	}
	return RawTag{}
}

// FinanceValue reads a monetary field from metadata.financeiro,
// metadata.finance or the metadata root, as a string.
func FinanceValue(meta Metadata, key string) string {
	if meta == nil {
		return ""
	}
	source := meta
	if nested, ok := meta.object("financeiro"); ok {
		source = nested
	} else if nested, ok := meta.object("finance"); ok {
		source = nested
	}
	switch v := source[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
