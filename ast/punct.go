package ast

import "github.com/eaburns/unconst/token"

// A Pair is a value and the separator following it, if any.
type Pair[T any] struct {
	Value T
	// Punct is the separator, or nil for the last value
	// of a list without a trailing separator.
	Punct token.Stream
}

// Punctuated is a separated list of values.
// Only the last Pair may have a nil Punct.
type Punctuated[T any] []Pair[T]

// Values returns the values without their separators.
func (p Punctuated[T]) Values() []T {
	vs := make([]T, len(p))
	for i := range p {
		vs[i] = p[i].Value
	}
	return vs
}

// Trailing returns whether the list ends with a separator.
func (p Punctuated[T]) Trailing() bool {
	return len(p) > 0 && p[len(p)-1].Punct != nil
}

// Last returns the last value; ok is false if the list is empty.
func (p Punctuated[T]) Last() (v T, ok bool) {
	if len(p) == 0 {
		return v, false
	}
	return p[len(p)-1].Value, true
}

// PushValue appends a value with no separator.
func (p *Punctuated[T]) PushValue(v T) {
	*p = append(*p, Pair[T]{Value: v})
}

// PushPunct sets the separator following the last value.
func (p *Punctuated[T]) PushPunct(s token.Stream) {
	if len(*p) == 0 || (*p)[len(*p)-1].Punct != nil {
		panic("impossible")
	}
	(*p)[len(*p)-1].Punct = s
}

func (p Punctuated[T]) tokens(f func(T) token.Stream) token.Stream {
	var ts token.Stream
	for _, pair := range p {
		ts = append(ts, f(pair.Value)...)
		ts = append(ts, pair.Punct...)
	}
	return ts
}
