package engine

// KeyTracker tells object keys apart from string values in a delimiter token
// stream such as the one produced by encoding/json's Decoder.Token.
type KeyTracker struct {
	stack []keyFrame
}

type keyFrame struct {
	object       bool
	expectingKey bool
}

// Open records a '{' (object) or '[' and returns the matching begin Kind.
func (k *KeyTracker) Open(object bool) Kind {
	k.stack = append(k.stack, keyFrame{object: object, expectingKey: object})
	if object {
		return KindBeginObject
	}
	return KindBeginArray
}

// Close records a '}' or ']' and returns the matching end Kind.
func (k *KeyTracker) Close() Kind {
	kind := KindEndArray
	if n := len(k.stack); n > 0 {
		if k.stack[n-1].object {
			kind = KindEndObject
		}
		k.stack = k.stack[:n-1]
	}
	k.Value()
	return kind
}

// String classifies a string token as KindKey or KindString.
func (k *KeyTracker) String() Kind {
	if n := len(k.stack); n > 0 {
		top := &k.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return KindKey
		}
	}
	k.Value()
	return KindString
}

// Value records a completed value.
func (k *KeyTracker) Value() {
	if n := len(k.stack); n > 0 {
		top := &k.stack[n-1]
		if top.object {
			top.expectingKey = true
		}
	}
}
