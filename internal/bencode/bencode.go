// Package bencode implements a minimal, deterministic bencode encoder for
// the tagged value model used by .torrent metadata: integers, byte
// strings, lists, and maps with lexicographically ordered keys.
package bencode

import (
	"bytes"
	"fmt"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInteger Kind = iota
	KindBytes
	KindList
	KindMap
)

// Value is a tagged bencode value. Exactly one of its payload fields is
// meaningful, selected by Kind().
type Value struct {
	kind  Kind
	i     int64
	b     []byte
	list  []Value
	pairs []pair // kept sorted by key; see Insert
}

type pair struct {
	key   []byte
	value Value
}

// Integer returns a bencode integer value.
func Integer(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Bytes returns a bencode byte-string value. The slice is used as-is, not
// copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, b: b}
}

// String is a convenience wrapper over Bytes for ASCII/UTF-8 text fields.
func String(s string) Value {
	return Value{kind: KindBytes, b: []byte(s)}
}

// List returns a bencode list value preserving the given order.
func List(vs ...Value) Value {
	return Value{kind: KindList, list: vs}
}

// NewMap returns an empty bencode map value.
func NewMap() Value {
	return Value{kind: KindMap}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Insert adds or replaces the value at key, keeping pairs in ascending
// lexicographic byte order of their keys. Insert panics if v is not a map
// value; this mirrors the tagged-variant contract where callers build a
// value with NewMap() before inserting.
func (v *Value) Insert(key string, val Value) {
	if v.kind != KindMap {
		panic("bencode: Insert on non-map Value")
	}
	k := []byte(key)
	i := sort.Search(len(v.pairs), func(i int) bool {
		return bytes.Compare(v.pairs[i].key, k) >= 0
	})
	if i < len(v.pairs) && bytes.Equal(v.pairs[i].key, k) {
		v.pairs[i].value = val
		return
	}
	v.pairs = append(v.pairs, pair{})
	copy(v.pairs[i+1:], v.pairs[i:])
	v.pairs[i] = pair{key: k, value: val}
}

// Child returns a pointer to the value stored at key within the map v, for
// further in-place mutation — building a nested tree of maps means every
// Insert must land in the actual stored node, not a copy of it. Child
// panics if v is not a map value.
func (v *Value) Child(key string) (*Value, bool) {
	if v.kind != KindMap {
		panic("bencode: Child on non-map Value")
	}
	k := []byte(key)
	i := sort.Search(len(v.pairs), func(i int) bool {
		return bytes.Compare(v.pairs[i].key, k) >= 0
	})
	if i < len(v.pairs) && bytes.Equal(v.pairs[i].key, k) {
		return &v.pairs[i].value, true
	}
	return nil, false
}

// Serialize deterministically renders v as canonical bencode bytes.
// Serialize is a total function: every well-formed Value produces output,
// there are no failure modes.
func Serialize(v Value) []byte {
	buf := make([]byte, 0, 256)
	buf = appendValue(buf, v)
	return buf
}

func appendValue(buf []byte, v Value) []byte {
	switch v.kind {
	case KindInteger:
		return appendInt(buf, v.i)
	case KindBytes:
		return appendBytes(buf, v.b)
	case KindList:
		buf = append(buf, 'l')
		for _, item := range v.list {
			buf = appendValue(buf, item)
		}
		return append(buf, 'e')
	case KindMap:
		buf = append(buf, 'd')
		for _, p := range v.pairs {
			buf = appendBytes(buf, p.key)
			buf = appendValue(buf, p.value)
		}
		return append(buf, 'e')
	default:
		panic(fmt.Sprintf("bencode: Value with invalid kind %d", v.kind))
	}
}

func appendInt(buf []byte, i int64) []byte {
	buf = append(buf, 'i')
	buf = appendDecimal(buf, i)
	return append(buf, 'e')
}

func appendBytes(buf []byte, b []byte) []byte {
	buf = appendDecimal(buf, int64(len(b)))
	buf = append(buf, ':')
	return append(buf, b...)
}

// appendDecimal writes the ASCII decimal representation of i: no leading
// zeros, a minus sign only for strictly negative values, and both 0 and -0
// rendered as "0".
func appendDecimal(buf []byte, i int64) []byte {
	if i == 0 {
		return append(buf, '0')
	}
	neg := i < 0
	u := uint64(i)
	if neg {
		u = -u // unsigned negation; correct even for math.MinInt64
		buf = append(buf, '-')
	}
	start := len(buf)
	for u > 0 {
		buf = append(buf, byte('0'+u%10))
		u /= 10
	}
	// digits were appended least-significant first; reverse in place
	for l, r := start, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return buf
}
