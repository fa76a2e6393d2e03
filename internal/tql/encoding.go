package tql

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// document is the serialized shape of an Expression: a kind plus either a
// tag list or a child list.
type document struct {
	Kind        string        `json:"kind" yaml:"kind"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Expressions []*Expression `json:"expressions,omitempty" yaml:"expressions,omitempty"`
}

func (e *Expression) toDocument() document {
	doc := document{Kind: e.Kind.String()}
	if e.Kind.IsTagKind() {
		doc.Tags = tags.Strings(e.Tags)
	}
	if e.Kind.IsExpressionKind() {
		doc.Expressions = e.Expressions
	}
	return doc
}

func (e *Expression) fromDocument(doc document) error {
	kind, err := ParseKind(doc.Kind)
	if err != nil {
		return err
	}
	if kind.IsTagKind() && len(doc.Expressions) > 0 {
		return fmt.Errorf("%s expression cannot hold sub-expressions", kind)
	}
	if kind.IsExpressionKind() && len(doc.Tags) > 0 {
		return fmt.Errorf("%s expression cannot hold tags", kind)
	}

	ts, err := tags.ParseAll(doc.Tags...)
	if err != nil {
		return fmt.Errorf("%s expression: %w", kind, err)
	}
	*e = Expression{Kind: kind, Expressions: doc.Expressions}
	if len(ts) > 0 {
		e.Tags = ts
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e *Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toDocument())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expression) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return e.fromDocument(doc)
}

// MarshalYAML implements yaml.Marshaler.
func (e *Expression) MarshalYAML() (any, error) {
	return e.toDocument(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Expression) UnmarshalYAML(value *yaml.Node) error {
	var doc document
	if err := value.Decode(&doc); err != nil {
		return err
	}
	return e.fromDocument(doc)
}

// MarshalJSON encodes the query as its root expression.
func (q *Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Root)
}

// UnmarshalJSON decodes a root expression.
func (q *Query) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &q.Root)
}

// MarshalYAML encodes the query as its root expression.
func (q *Query) MarshalYAML() (any, error) {
	return q.Root, nil
}

// UnmarshalYAML decodes a root expression.
func (q *Query) UnmarshalYAML(value *yaml.Node) error {
	return value.Decode(&q.Root)
}
