package catalog

import (
	"encoding/json"
	"strings"
)

// Entry is one catalog record. The fields the service reasons about are
// typed; everything else the catalog sends is carried through untouched in
// Extra so listings stay faithful to the upstream shape.
type Entry struct {
	ID          string
	Name        string
	Description string
	ItemType    string
	Icon        string
	Image       string
	Extra       map[string]json.RawMessage

	// known holds the received encoding of each typed field so unchanged
	// values are written back exactly as the catalog sent them.
	known map[string]json.RawMessage
}

var knownFields = []string{"id", "name", "description", "item_type", "icon", "image"}

func (e *Entry) fields() []*string {
	return []*string{&e.ID, &e.Name, &e.Description, &e.ItemType, &e.Icon, &e.Image}
}

// HasImage reports whether the entry carries a non-blank image reference.
func (e Entry) HasImage() bool {
	return strings.TrimSpace(e.Image) != ""
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{}
	for i, dst := range e.fields() {
		name := knownFields[i]
		value, ok := raw[name]
		if !ok {
			continue
		}
		delete(raw, name)
		if e.known == nil {
			e.known = make(map[string]json.RawMessage, len(knownFields))
		}
		e.known[name] = value
		*dst = decodeField(value)
	}
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

func decodeField(value json.RawMessage) string {
	if string(value) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		// Ids occasionally arrive as numbers.
		s = strings.Trim(string(value), `"`)
	}
	return s
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+len(knownFields))
	for k, v := range e.Extra {
		out[k] = v
	}
	for i, value := range e.fields() {
		name := knownFields[i]
		if raw, ok := e.known[name]; ok && decodeField(raw) == *value {
			out[name] = raw
			continue
		}
		// id and name are always present; the rest only when set.
		if i < 2 || *value != "" {
			out[name] = *value
		}
	}
	return json.Marshal(out)
}
