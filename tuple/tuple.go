// Package tuple holds the argument tuples that fngroup dispatchers accept.
//
// A function group variant declared as (one: int, two: string) is called with
// a T2[int, string]; the Of constructors let the element types be inferred:
//
//	Add(tuple.Of2(5, 5))
package tuple

// MaxArity is the largest number of arguments a variant may declare.
const MaxArity = 8

// Tuple is implemented by every tuple type in this package.
type Tuple interface {
	Len() int
}

type T0 struct{}

type T1[A any] struct {
	V0 A
}

type T2[A, B any] struct {
	V0 A
	V1 B
}

type T3[A, B, C any] struct {
	V0 A
	V1 B
	V2 C
}

type T4[A, B, C, D any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
}

type T5[A, B, C, D, E any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
	V4 E
}

type T6[A, B, C, D, E, F any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
	V4 E
	V5 F
}

type T7[A, B, C, D, E, F, G any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
	V4 E
	V5 F
	V6 G
}

type T8[A, B, C, D, E, F, G, H any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
	V4 E
	V5 F
	V6 G
	V7 H
}

func (T0) Len() int                         { return 0 }
func (T1[A]) Len() int                      { return 1 }
func (T2[A, B]) Len() int                   { return 2 }
func (T3[A, B, C]) Len() int                { return 3 }
func (T4[A, B, C, D]) Len() int             { return 4 }
func (T5[A, B, C, D, E]) Len() int          { return 5 }
func (T6[A, B, C, D, E, F]) Len() int       { return 6 }
func (T7[A, B, C, D, E, F, G]) Len() int    { return 7 }
func (T8[A, B, C, D, E, F, G, H]) Len() int { return 8 }

func Of0() T0 { return T0{} }

func Of1[A any](a A) T1[A] { return T1[A]{a} }

func Of2[A, B any](a A, b B) T2[A, B] { return T2[A, B]{a, b} }

func Of3[A, B, C any](a A, b B, c C) T3[A, B, C] { return T3[A, B, C]{a, b, c} }

func Of4[A, B, C, D any](a A, b B, c C, d D) T4[A, B, C, D] {
	return T4[A, B, C, D]{a, b, c, d}
}

func Of5[A, B, C, D, E any](a A, b B, c C, d D, e E) T5[A, B, C, D, E] {
	return T5[A, B, C, D, E]{a, b, c, d, e}
}

func Of6[A, B, C, D, E, F any](a A, b B, c C, d D, e E, f F) T6[A, B, C, D, E, F] {
	return T6[A, B, C, D, E, F]{a, b, c, d, e, f}
}

func Of7[A, B, C, D, E, F, G any](a A, b B, c C, d D, e E, f F, g G) T7[A, B, C, D, E, F, G] {
	return T7[A, B, C, D, E, F, G]{a, b, c, d, e, f, g}
}

func Of8[A, B, C, D, E, F, G, H any](a A, b B, c C, d D, e E, f F, g G, h H) T8[A, B, C, D, E, F, G, H] {
	return T8[A, B, C, D, E, F, G, H]{a, b, c, d, e, f, g, h}
}
