package bigbuy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ErrorNode is one node of the validation tree BigBuy returns under
// "errors". It is one of Leaf, ObjectNode or ArrayNode.
type ErrorNode interface {
	flatten(path string, out map[string][]string)
}

// Leaf is a field with messages and no children.
type Leaf struct {
	Errors []string
}

// ObjectNode is a form field whose children are named sub-fields.
type ObjectNode struct {
	Errors   []string
	Children map[string]ErrorNode
}

// ArrayNode is a collection field; its children share the parent's path.
type ArrayNode struct {
	Errors   []string
	Children []ErrorNode
}

func (n Leaf) flatten(path string, out map[string][]string) {
	emit(out, path, n.Errors)
}

func (n ObjectNode) flatten(path string, out map[string][]string) {
	emit(out, path, n.Errors)
	for _, name := range slices.Sorted(maps.Keys(n.Children)) {
		child := n.Children[name]
		if child == nil {
			continue
		}
		child.flatten(joinPath(path, name), out)
	}
}

func (n ArrayNode) flatten(path string, out map[string][]string) {
	emit(out, path, n.Errors)
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		child.flatten(path, out)
	}
}

func emit(out map[string][]string, path string, errs []string) {
	if len(errs) == 0 {
		return
	}
	out[path] = append(out[path], errs...)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// FlattenErrors converts a validation tree into a dotted path to messages
// mapping. Branches without any message do not appear in the result.
func FlattenErrors(node ErrorNode) map[string][]string {
	out := make(map[string][]string)
	if node != nil {
		node.flatten("", out)
	}
	return out
}

// ParseErrorTree decodes the JSON validation tree. A node is either a list
// (messages, or child nodes for collection fields), an object with optional
// "errors" and "children" keys, or a bare mapping of field name to node.
func ParseErrorTree(data []byte) (ErrorNode, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Leaf{}, nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to parse error list: %w", err)
		}
		msgs, children, err := parseItems(items)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return Leaf{Errors: msgs}, nil
		}
		return ArrayNode{Errors: msgs, Children: children}, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse error node: %w", err)
		}
		rawErrors, hasErrors := fields["errors"]
		rawChildren, hasChildren := fields["children"]
		if !hasErrors && !hasChildren {
			children, err := parseChildMap(fields)
			if err != nil {
				return nil, err
			}
			return ObjectNode{Children: children}, nil
		}

		var msgs []string
		if hasErrors {
			var err error
			if msgs, err = parseMessages(rawErrors); err != nil {
				return nil, err
			}
		}
		if !hasChildren {
			return Leaf{Errors: msgs}, nil
		}

		rawChildren = bytes.TrimSpace(rawChildren)
		if len(rawChildren) > 0 && rawChildren[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal(rawChildren, &items); err != nil {
				return nil, fmt.Errorf("failed to parse error children: %w", err)
			}
			children := make([]ErrorNode, 0, len(items))
			for _, item := range items {
				child, err := ParseErrorTree(item)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			return ArrayNode{Errors: msgs, Children: children}, nil
		}

		var childFields map[string]json.RawMessage
		if len(rawChildren) > 0 && !bytes.Equal(rawChildren, []byte("null")) {
			if err := json.Unmarshal(rawChildren, &childFields); err != nil {
				return nil, fmt.Errorf("failed to parse error children: %w", err)
			}
		}
		children, err := parseChildMap(childFields)
		if err != nil {
			return nil, err
		}
		return ObjectNode{Errors: msgs, Children: children}, nil

	case '"':
		var msg string
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse error message: %w", err)
		}
		if msg == "" {
			return Leaf{}, nil
		}
		return Leaf{Errors: []string{msg}}, nil
	}

	return nil, fmt.Errorf("unexpected error node %q", truncate(string(data), 64))
}

func parseChildMap(fields map[string]json.RawMessage) (map[string]ErrorNode, error) {
	children := make(map[string]ErrorNode, len(fields))
	for name, raw := range fields {
		child, err := ParseErrorTree(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		children[name] = child
	}
	return children, nil
}

// parseItems splits a JSON list into plain messages and nested nodes.
func parseItems(items []json.RawMessage) ([]string, []ErrorNode, error) {
	var msgs []string
	var children []ErrorNode
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var msg string
			if err := json.Unmarshal(item, &msg); err != nil {
				return nil, nil, fmt.Errorf("failed to parse error message: %w", err)
			}
			msgs = append(msgs, msg)
			continue
		}
		child, err := ParseErrorTree(item)
		if err != nil {
			return nil, nil, err
		}
		children = append(children, child)
	}
	return msgs, children, nil
}

func parseMessages(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse error message: %w", err)
		}
		return []string{msg}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse error messages: %w", err)
	}
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		var msg string
		if err := json.Unmarshal(item, &msg); err != nil {
			msg = string(bytes.TrimSpace(item))
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
