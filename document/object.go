package document

// Object is a JSON object. Member order is kept so documents encode the way
// they were decoded, but it is ignored by Equal.
//
// The zero value and a nil *Object are both empty objects.
type Object struct {
	keys   []string
	fields map[string]Value
}

// Member is a key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// NewObject returns an object holding members in order. A later member
// replaces an earlier one with the same key.
func NewObject(members ...Member) *Object {
	o := &Object{fields: make(map[string]Value, len(members))}
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return o
}

func (o *Object) Kind() Kind { return KindObject }

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the member keys in order. The returned slice is a copy.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the member value for key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is a member.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Range calls fn for each member in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Set adds or replaces a member in place and returns o. Setting a nil value
// deletes the member, since nil means absent.
func (o *Object) Set(key string, v Value) *Object {
	if v == nil {
		o.Delete(key)
		return o
	}
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
	return o
}

// Delete removes a member in place.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.fields[key]; !ok {
		return
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// With returns a shallow copy of o with key set to v. o is not modified.
func (o *Object) With(key string, v Value) *Object {
	return o.shallowCopy().Set(key, v)
}

// Without returns a shallow copy of o without key. o is not modified.
func (o *Object) Without(key string) *Object {
	c := o.shallowCopy()
	c.Delete(key)
	return c
}

func (o *Object) shallowCopy() *Object {
	c := &Object{fields: make(map[string]Value, o.Len()+1)}
	if o == nil {
		return c
	}
	c.keys = make([]string, len(o.keys), len(o.keys)+1)
	copy(c.keys, o.keys)
	for k, v := range o.fields {
		c.fields[k] = v
	}
	return c
}
