package vdom

import (
	"sort"
	"strings"
)

// AttrKind discriminates how an attribute value is applied to the live
// tree. Classification happens once, at attribute-application time, from
// the value's concrete type rather than from key-name conventions.
type AttrKind int

const (
	// AttrPlain is applied verbatim through the adapter.
	AttrPlain AttrKind = iota

	// AttrEvent registers an event handler; the event name is the prop key
	// with its "on" prefix stripped and lowercased ("onClick" -> "click").
	AttrEvent

	// AttrBool is present-or-absent: true applies the attribute with an
	// empty value, false removes it.
	AttrBool

	// AttrClassList is a []string joined with single spaces.
	AttrClassList

	// AttrStyleMap is a map[string]string rendered as "k:v" pairs joined
	// with ";" in key order.
	AttrStyleMap
)

// EventHandler is the callback type carried by event attributes. The
// payload is host-specific.
type EventHandler func(payload any)

// Attr is a classified attribute ready to be applied.
type Attr struct {
	Kind  AttrKind
	Key   string
	Value any
}

// ClassifyAttr resolves a prop into its applied form.
func ClassifyAttr(key string, value any) Attr {
	switch v := value.(type) {
	case EventHandler:
		return Attr{Kind: AttrEvent, Key: eventName(key), Value: v}
	case func(any):
		return Attr{Kind: AttrEvent, Key: eventName(key), Value: EventHandler(v)}
	case bool:
		return Attr{Kind: AttrBool, Key: key, Value: v}
	case []string:
		return Attr{Kind: AttrClassList, Key: key, Value: strings.Join(v, " ")}
	case map[string]string:
		return Attr{Kind: AttrStyleMap, Key: key, Value: renderStyle(v)}
	default:
		return Attr{Kind: AttrPlain, Key: key, Value: value}
	}
}

// IsEventProp reports whether a prop classifies as an event handler.
func IsEventProp(value any) bool {
	switch value.(type) {
	case EventHandler, func(any):
		return true
	default:
		return false
	}
}

func eventName(key string) string {
	name := strings.TrimPrefix(key, "on")
	return strings.ToLower(name)
}

func renderStyle(style map[string]string) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(style[k])
	}
	return b.String()
}
