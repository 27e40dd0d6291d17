package toon

// Object is an insertion-ordered mapping with unique string keys. It is the
// object form of the TOON value model: unlike a Go map it remembers the order
// keys were first set, and unlike a JavaScript object it has no prototype
// chain, so keys like "__proto__" are plain data here (the codec still
// rejects them, as a courtesy to consumers that do use prototype-carrying
// representations).
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]interface{})}
}

// Set stores value under key, appending the key if it is new and keeping its
// original position otherwise. Returns the object for chaining.
func (o *Object) Set(key string, value interface{}) *Object {
	if o.values == nil {
		o.values = make(map[string]interface{})
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key and whether it is present.
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}
