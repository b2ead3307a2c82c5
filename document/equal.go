package document

import (
	"sort"
	"strconv"
	"strings"
)

// Equal performs a deep equality check between a and b. Absent (nil) values
// are only equal to absent values; objects compare without regard to member
// order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		equal := true
		av.Range(func(key string, v Value) bool {
			other, ok := bv.Get(key)
			equal = ok && Equal(v, other)
			return equal
		})
		return equal
	}
	return false
}

// Canonical returns a string that is identical for two values exactly when
// they are Equal. Object members are sorted, so it is suitable as a map key.
func Canonical(v Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, v Value) {
	switch tv := v.(type) {
	case nil:
		b.WriteString("undefined")
	case Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(tv)))
	case Number:
		if tv == 0 {
			// -0 == 0
			b.WriteByte('0')
			break
		}
		b.WriteString(strconv.FormatFloat(float64(tv), 'g', -1, 64))
	case String:
		b.WriteString(strconv.Quote(string(tv)))
	case Array:
		b.WriteByte('[')
		for i, e := range tv {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, e)
		}
		b.WriteByte(']')
	case *Object:
		keys := tv.Keys()
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			e, _ := tv.Get(k)
			writeCanonical(b, e)
		}
		b.WriteByte('}')
	}
}
