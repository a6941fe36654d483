// Package slate converts review text to and from the Slate rich-text documents Hardcover.app stores reviews as.
package slate

import (
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"strings"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
)

const (
	objectDocument = "document"
	objectBlock    = "block"
	objectText     = "text"
	typeParagraph  = "paragraph"

	paragraphBreak = "\n\n"
)

// Document is the root wrapper Hardcover.app expects in review_slate.
type Document struct {
	Document Node `json:"document"`
}

// Node is one element of a Slate tree.
type Node struct {
	Object   string    `json:"object"`
	Type     string    `json:"type,omitzero"`
	Data     *struct{} `json:"data,omitzero"`
	Text     *string   `json:"text,omitzero"`
	Children []Node    `json:"children,omitzero"`
}

// Encode builds a document with one paragraph per non-empty line of text.
func Encode(text string) Document {
	children := make([]Node, 0)
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		children = append(children, paragraph(line))
	}

	return Document{Document: Node{Object: objectDocument, Children: children}}
}

func paragraph(line string) Node {
	return Node{
		Object: objectBlock,
		Type:   typeParagraph,
		Data:   &struct{}{},
		Children: []Node{
			{Object: objectText, Text: &line},
		},
	}
}

// Marshal encodes text straight to the JSON sent as review_slate.
func Marshal(text string) (jsontext.Value, error) {
	data, err := json.Marshal(Encode(text))
	if err != nil {
		return nil, syncerrors.Codecf("encode review: %v", err)
	}
	return data, nil
}

// Decode flattens a stored review back to text. Every paragraph is preceded
// by a blank line, so the result starts with one; callers trim.
// Any JSON shape is walked in document order: arrays and object members are
// visited recursively, text leaves contribute their string and scalars
// contribute nothing. Only malformed JSON is an error.
func Decode(raw []byte) (string, error) {
	value := jsontext.Value(bytes.TrimSpace(raw))
	if len(value) == 0 {
		return "", nil
	}
	if !value.IsValid() {
		return "", syncerrors.Codecf("malformed review document")
	}

	var sb strings.Builder
	if err := reduce(&sb, value); err != nil {
		return "", syncerrors.Codecf("malformed review document: %v", err)
	}
	return sb.String(), nil
}

// member is one name/value pair of an object, kept in document order.
type member struct {
	name  string
	value jsontext.Value
}

func reduce(sb *strings.Builder, value jsontext.Value) error {
	switch value.Kind() {
	case '[':
		var items []jsontext.Value
		if err := json.Unmarshal(value, &items); err != nil {
			return err
		}
		for _, item := range items {
			if err := reduce(sb, item); err != nil {
				return err
			}
		}
	case '{':
		members, err := objectMembers(value)
		if err != nil {
			return err
		}
		if stringMember(members, "type") == typeParagraph {
			sb.WriteString(paragraphBreak)
		}
		if stringMember(members, "object") == objectText {
			sb.WriteString(stringMember(members, "text"))
			return nil
		}
		for _, m := range members {
			if err := reduce(sb, m.value); err != nil {
				return err
			}
		}
	}
	return nil
}

func objectMembers(value jsontext.Value) ([]member, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(value))
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}

	var members []member
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		v, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		members = append(members, member{name: name.String(), value: v.Clone()})
	}
	return members, nil
}

// stringMember returns the named member when it is a string, or "".
func stringMember(members []member, name string) string {
	for _, m := range members {
		if m.name != name || m.value.Kind() != '"' {
			continue
		}
		var s string
		if err := json.Unmarshal(m.value, &s); err != nil {
			return ""
		}
		return s
	}
	return ""
}
