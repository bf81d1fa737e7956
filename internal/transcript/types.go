package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Record represents a single line in the JSONL transcript. Loosely shaped
// fields stay raw and are decoded on demand. A field holding an unexpected
// JSON type is left zero instead of rejecting the line.
type Record struct {
	Type             string          `json:"type"`
	Subtype          string          `json:"subtype"`
	Timestamp        string          `json:"timestamp"`
	Slug             string          `json:"slug"`
	Cwd              string          `json:"cwd"`
	SessionID        string          `json:"sessionId"`
	GitBranch        string          `json:"gitBranch"`
	PermissionMode   string          `json:"permissionMode"`
	ThinkingMetadata json.RawMessage `json:"thinkingMetadata"`
	DurationMs       float64         `json:"durationMs"`
	ParentToolUseID  string          `json:"parentToolUseID"`
	Data             json.RawMessage `json:"data"`
	Message          *Message        `json:"message"`
}

// Message represents the message field in transcript records
type Message struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Usage   *Usage          `json:"usage"`
	Content json.RawMessage `json:"content"`
}

// Usage represents token usage in a message
type Usage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// ContentBlock is one typed element of a content list. Plain string
// elements are surfaced as text blocks with IsString set.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	IsString  bool            `json:"-"`
}

// fields decodes each known key of an object on its own, so one mistyped
// value only loses that value.
type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNotObject
	}
	return f, nil
}

var errNotObject = errors.New("not a JSON object")

func (f fields) get(key string, dst any) {
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

func (f fields) raw(key string) json.RawMessage {
	raw := f[key]
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

func (r *Record) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*r = Record{}
	f.get("type", &r.Type)
	f.get("subtype", &r.Subtype)
	f.get("timestamp", &r.Timestamp)
	f.get("slug", &r.Slug)
	f.get("cwd", &r.Cwd)
	f.get("sessionId", &r.SessionID)
	f.get("gitBranch", &r.GitBranch)
	f.get("permissionMode", &r.PermissionMode)
	f.get("durationMs", &r.DurationMs)
	f.get("parentToolUseID", &r.ParentToolUseID)
	r.ThinkingMetadata = f.raw("thinkingMetadata")
	r.Data = f.raw("data")

	if raw := f.raw("message"); raw != nil {
		var m Message
		if err := json.Unmarshal(raw, &m); err == nil {
			r.Message = &m
		}
	}
	return nil
}

func (m *Message) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*m = Message{}
	f.get("role", &m.Role)
	f.get("model", &m.Model)
	m.Content = f.raw("content")

	if raw := f.raw("usage"); raw != nil {
		var u Usage
		if uf, err := decodeFields(raw); err == nil {
			uf.get("input_tokens", &u.InputTokens)
			uf.get("output_tokens", &u.OutputTokens)
			uf.get("cache_creation_input_tokens", &u.CacheCreationInputTokens)
			uf.get("cache_read_input_tokens", &u.CacheReadInputTokens)
			m.Usage = &u
		}
	}
	return nil
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*b = ContentBlock{}
	f.get("type", &b.Type)
	f.get("text", &b.Text)
	f.get("id", &b.ID)
	f.get("name", &b.Name)
	f.get("tool_use_id", &b.ToolUseID)
	f.get("is_error", &b.IsError)
	b.Input = f.raw("input")
	return nil
}

// ThinkingLevel returns thinkingMetadata.level when present.
func (r *Record) ThinkingLevel() (string, bool) {
	if len(r.ThinkingMetadata) == 0 {
		return "", false
	}
	var meta struct {
		Level *string `json:"level"`
	}
	if err := json.Unmarshal(r.ThinkingMetadata, &meta); err != nil || meta.Level == nil {
		return "", false
	}
	return *meta.Level, true
}

// AgentID returns data.agentId of a progress event, or "".
func (r *Record) AgentID() string {
	if len(r.Data) == 0 {
		return ""
	}
	var data struct {
		AgentID string `json:"agentId"`
	}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return ""
	}
	return data.AgentID
}

// ContentString returns the content when it is a plain string.
func (m *Message) ContentString() (string, bool) {
	raw := bytes.TrimSpace(m.Content)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Blocks decodes a content list. ok is false when content is not a list.
// Elements that are neither strings nor objects are skipped.
func (m *Message) Blocks() ([]ContentBlock, bool) {
	raw := bytes.TrimSpace(m.Content)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	blocks := make([]ContentBlock, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				blocks = append(blocks, ContentBlock{Type: "text", Text: s, IsString: true})
			}
		case '{':
			var b ContentBlock
			if err := json.Unmarshal(item, &b); err == nil {
				blocks = append(blocks, b)
			}
		}
	}
	return blocks, true
}

// Text extracts the message text: the string content itself, or the text
// blocks of a list joined by newlines. ok is false when there is none.
func (m *Message) Text() (string, bool) {
	if s, ok := m.ContentString(); ok {
		return s, true
	}
	blocks, ok := m.Blocks()
	if !ok {
		return "", false
	}
	var parts []string
	for _, b := range blocks {
		if b.IsString || b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}
