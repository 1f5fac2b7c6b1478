package proposal

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Status is the lifecycle state recorded on a proposal.
type Status string

// StatusPending is the only status this tool ever writes.
const StatusPending Status = "pending"

// Proposal is a single entry in the store.
type Proposal struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// New returns a pending proposal carrying description verbatim.
func New(description string) Proposal {
	return Proposal{Description: description, Status: StatusPending}
}

var (
	// ErrInvalidJSON indicates the input could not be parsed as JSON.
	ErrInvalidJSON = errors.New("not valid JSON")
	// ErrNotObject indicates valid JSON whose top-level value is not an object.
	ErrNotObject = errors.New("top-level JSON value is not an object")
	// ErrDuplicateID indicates an insert would replace an existing entry.
	ErrDuplicateID = errors.New("proposal id already present")
	// ErrUnknownID indicates the requested id is not in the collection.
	ErrUnknownID = errors.New("unknown proposal id")
	// ErrInvalidUTF8 indicates text that JSON cannot carry without loss.
	ErrInvalidUTF8 = errors.New("text is not valid UTF-8")
)

var encodeOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

// Collection maps proposal ids to their JSON values, remembering the order
// in which ids were first seen. Keys and values are held as raw JSON so
// entries written by other tools survive a rewrite untouched.
type Collection struct {
	ids    []string
	keys   map[string]string
	values map[string]json.RawMessage
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{
		keys:   make(map[string]string),
		values: make(map[string]json.RawMessage),
	}
}

// Parse decodes a JSON object into a collection, keeping key order.
// A repeated key keeps its first position and its last value.
func Parse(data []byte) (*Collection, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotObject
	}

	c := NewCollection()
	root.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if _, ok := c.values[id]; !ok {
			c.ids = append(c.ids, id)
			c.keys[id] = key.Raw
		}
		c.values[id] = json.RawMessage(value.Raw)
		return true
	})
	return c, nil
}

// Len reports the number of entries.
func (c *Collection) Len() int {
	return len(c.ids)
}

// IDs returns entry ids in file order.
func (c *Collection) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	_, ok := c.values[id]
	return ok
}

// Raw returns the stored JSON for id.
func (c *Collection) Raw(id string) (json.RawMessage, bool) {
	raw, ok := c.values[id]
	return raw, ok
}

// Get decodes the entry stored under id.
func (c *Collection) Get(id string) (Proposal, error) {
	raw, ok := c.values[id]
	if !ok {
		return Proposal{}, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	var p Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Proposal{}, fmt.Errorf("decode proposal %s: %w", id, err)
	}
	return p, nil
}

// Insert appends p under id. Existing entries are never replaced, and text
// that is not valid UTF-8 is refused rather than rewritten.
func (c *Collection) Insert(id string, p Proposal) error {
	if c.Has(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	for _, s := range []string{id, p.Description, string(p.Status)} {
		if !utf8.ValidString(s) {
			return fmt.Errorf("%w: %q", ErrInvalidUTF8, s)
		}
	}
	key, err := json.Marshal(id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	c.ids = append(c.ids, id)
	c.keys[id] = string(key)
	c.values[id] = raw
	return nil
}

// Encode renders the collection as an indented JSON object in id order.
func (c *Collection) Encode() ([]byte, error) {
	buf := make([]byte, 0, 64*(len(c.ids)+1))
	buf = append(buf, '{')
	for i, id := range c.ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c.keys[id]...)
		buf = append(buf, ':')
		buf = append(buf, c.values[id]...)
	}
	buf = append(buf, '}')
	return pretty.PrettyOptions(buf, encodeOptions), nil
}

// CheckEntries reports the ids whose values do not decode as a proposal
// with a string description and status.
func (c *Collection) CheckEntries() []string {
	var bad []string
	for _, id := range c.ids {
		v := gjson.ParseBytes(c.values[id])
		if !v.IsObject() ||
			v.Get("description").Type != gjson.String ||
			v.Get("status").Type != gjson.String {
			bad = append(bad, id)
		}
	}
	return bad
}
