// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindInt
	KindTextList
)

// String returns a short name for the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindTextList:
		return "text-list"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a tagged union over the four parameter value shapes the gateway
// accepts. The operation schema decides which kind a given parameter key must
// carry; accessors for the wrong kind return the zero value of that kind.
type Value struct {
	kind Kind
	text string
	b    bool
	i    int
	list []string
}

// Text wraps a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer value.
func Int(i int) Value { return Value{kind: KindInt, i: i} }

// TextList wraps a list-of-text value.
func TextList(items ...string) Value { return Value{kind: KindTextList, list: items} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Text returns the text variant, or "" if the value holds another kind.
func (v Value) Text() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// Bool returns the boolean variant, or false for another kind.
func (v Value) Bool() bool {
	if v.kind != KindBool {
		return false
	}
	return v.b
}

// Int returns the integer variant, or 0 for another kind.
func (v Value) Int() int {
	if v.kind != KindInt {
		return 0
	}
	return v.i
}

// TextList returns the list variant, or nil for another kind.
func (v Value) TextList() []string {
	if v.kind != KindTextList {
		return nil
	}
	return v.list
}

// MarshalJSON encodes the value as the natural JSON shape of its kind.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindTextList:
		// Lists marshal as [] rather than null when empty.
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
}

// UnmarshalJSON decodes a JSON scalar or string array into the matching
// variant. Numbers must be integral; anything else is rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = Text(t)
		return nil
	case bool:
		*v = Bool(t)
		return nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return fmt.Errorf("parameter values only accept integral numbers: %q", t.String())
		}
		*v = Int(int(n))
		return nil
	case []any:
		items := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("parameter lists only accept strings, got %T", e)
			}
			items = append(items, s)
		}
		*v = TextList(items...)
		return nil
	}
	return fmt.Errorf("unsupported parameter value shape %T", raw)
}

// Request is one call's parameter set, keyed by wire name. It is owned by the
// call in progress: the validator mutates it (filling defaults, stripping
// unknown keys) and the dispatcher reads the validated result.
type Request map[string]Value

// Has reports whether the request carries the given key.
func (r Request) Has(k ParamKey) bool {
	_, ok := r[k.String()]
	return ok
}

// Get returns the value for the given key.
func (r Request) Get(k ParamKey) (Value, bool) {
	v, ok := r[k.String()]
	return v, ok
}

// Set stores a value under the given key's wire name.
func (r Request) Set(k ParamKey, v Value) {
	r[k.String()] = v
}
