package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
)

func init() {
	mxj.SetAttrPrefix("@")
}

// Kind tags how a response body was decoded.
type Kind int

const (
	// KindRaw is a body returned as trimmed text.
	KindRaw Kind = iota
	// KindJSON is a body that looked like a JSON object.
	KindJSON
	// KindXML is a body that started with an XML declaration.
	KindXML
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindXML:
		return "xml"
	default:
		return "raw"
	}
}

// Body is a decoded response body.
type Body struct {
	// Kind reports which decoder produced Value.
	Kind Kind
	// Value is map[string]any for XML and JSON objects, and the trimmed
	// string for raw bodies.
	Value any
	// Raw is the trimmed body text.
	Raw string
}

// Decode classifies the trimmed body by shape and parses it:
//   - a leading "<?xml" parses as XML into a nested map, attributes keyed with "@"
//   - a leading "{" and trailing "}" parses as JSON
//   - anything else is returned as text
//
// JSON arrays do not match the object heuristic and come back as KindRaw.
func Decode(body []byte) (*Body, error) {
	s := strings.TrimSpace(string(body))

	switch {
	case strings.HasPrefix(s, "<?xml"):
		m, err := mxj.NewMapXml([]byte(s))
		if err != nil {
			return nil, newError(ErrCodeDecode, fmt.Errorf("xml: %w", err))
		}
		return &Body{Kind: KindXML, Value: map[string]any(m), Raw: s}, nil
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, newError(ErrCodeDecode, fmt.Errorf("json: %w", err))
		}
		return &Body{Kind: KindJSON, Value: v, Raw: s}, nil
	default:
		return &Body{Kind: KindRaw, Value: s, Raw: s}, nil
	}
}

// Map returns the structured value of an XML or JSON body.
func (b *Body) Map() (map[string]any, bool) {
	m, ok := b.Value.(map[string]any)
	return m, ok
}

// String returns the trimmed body text.
func (b *Body) String() string {
	return b.Raw
}

// Into decodes the body into v by way of its JSON form.
func (b *Body) Into(v any) error {
	data := []byte(b.Raw)
	if b.Kind != KindJSON {
		var err error
		if data, err = json.Marshal(b.Value); err != nil {
			return newError(ErrCodeDecode, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newError(ErrCodeDecode, err)
	}
	return nil
}
