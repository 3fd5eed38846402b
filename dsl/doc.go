// Package dsl builds gobind type descriptors explicitly, for types whose
// shape cannot be read from struct tags: private fields, constructor
// functions with defaults, computed getters.
//
// Entry points
//   - Type[T](): descriptor builder; chain Constructor/Prop then Bind(reg) or MustBind(reg).
//   - Param[V](name): constructor parameter; Default/Optional make it optional, JSON/Qualifier set wire details.
//   - Field(sel): settable property addressed by a field selector func(*T) *V.
//   - Getter(name, get) / Accessor(name, get, set): properties backed by functions.
//
// Properties match constructor parameters by name. Matched properties are
// constructor-supplied; the others must be settable.
//
// Example
//
//	type Point struct{ X, Y int }
//
//	b := dsl.Type[Point]().
//	    Constructor(func(a *gobind.Args) (Point, error) {
//	        return Point{X: gobind.ArgOf[int](a, "x"), Y: gobind.ArgOf[int](a, "y")}, nil
//	    }, dsl.Param[int]("x"), dsl.Param[int]("y").Default(0)).
//	    Prop(
//	        dsl.Getter("x", func(p *Point) int { return p.X }),
//	        dsl.Getter("y", func(p *Point) int { return p.Y }),
//	    ).
//	    MustBind(codec.Default())
//
//	p, err := gobind.Unmarshal(ctx, b, []byte(`{"x":1}`))
package dsl
