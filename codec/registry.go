// Package codec provides the default gobind.Registry: built-in codecs for
// scalars, time, bytes, pointers, slices, string-keyed maps and untyped
// values, qualifier codecs, and struct bindings resolved on demand.
package codec

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	gobind "github.com/reoring/gobind"
)

// ErrUnknownQualifier is returned for a qualifier tag with no registered
// handler.
var ErrUnknownQualifier = errors.New("codec: unknown qualifier")

// QualifierFunc builds the codec for type t under a qualifier tag. base is
// the unqualified codec of t.
type QualifierFunc func(t reflect.Type, base gobind.Codec) (gobind.Codec, error)

type key struct {
	t reflect.Type
	q string
}

// Registry resolves and caches codecs. Resolved codecs are published through
// a sync.Map; resolution itself runs under a single mutex so each (type,
// qualifier) pair is built at most once. Failed resolutions are not cached.
type Registry struct {
	log        *zap.Logger
	cache      sync.Map // key -> gobind.Codec
	mu         sync.Mutex
	custom     map[key]gobind.Codec
	qualifiers map[string]QualifierFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for resolution events. Defaults to a no-op
// logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCodec installs c for type t under qualifier q, ahead of the built-ins.
func WithCodec(t reflect.Type, q string, c gobind.Codec) Option {
	return func(r *Registry) { r.custom[key{t, q}] = c }
}

// WithQualifier installs a qualifier handler.
func WithQualifier(name string, f QualifierFunc) Option {
	return func(r *Registry) { r.qualifiers[name] = f }
}

// New returns a Registry with the built-in codecs and the "uppercase"
// qualifier.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:        zap.NewNop(),
		custom:     map[key]gobind.Codec{},
		qualifiers: map[string]QualifierFunc{QualifierUppercase: uppercase},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = New() })
	return defaultReg
}

// Register installs c for V under qualifier q. Codecs already handed out are
// not affected, so register before first use.
func Register[V any](r *Registry, q string, c gobind.Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{reflect.TypeFor[V](), q}
	r.custom[k] = c
	r.cache.Delete(k)
}

// Bind describes T from its struct tags and resolves it against r.
func Bind[T any](r *Registry) (*gobind.TypeBinding[T], error) {
	b, err := gobind.Bind[T](r)
	if err != nil {
		r.log.Warn("binding failed", zap.String("type", reflect.TypeFor[T]().String()), zap.Error(err))
		return nil, err
	}
	r.log.Debug("binding built", zap.String("type", b.Name()), zap.Int("fields", len(b.Fields())))
	return b, nil
}

// IsPlatformType implements gobind.Registry.
func (r *Registry) IsPlatformType(t reflect.Type) bool { return gobind.IsStdlibType(t) }

// Codec implements gobind.Registry.
func (r *Registry) Codec(t reflect.Type, q string) (gobind.Codec, error) {
	k := key{t, q}
	if c, ok := r.cache.Load(k); ok {
		return c.(gobind.Codec), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cache.Load(k); ok {
		return c.(gobind.Codec), nil
	}
	s := &session{r: r, building: map[key]*deferredCodec{}, resolved: map[key]gobind.Codec{}}
	c, err := s.Codec(t, q)
	if err != nil {
		r.log.Warn("codec resolution failed", zap.String("type", t.String()), zap.String("qualifier", q), zap.Error(err))
		return nil, err
	}
	for k, c := range s.resolved {
		r.cache.Store(k, c)
	}
	r.log.Debug("codec resolved", zap.String("type", t.String()), zap.String("qualifier", q), zap.Int("published", len(s.resolved)))
	return c, nil
}

// session is one top-level resolution running under r.mu. Nested lookups go
// through it so recursive types see a forward reference instead of
// re-entering the lock.
type session struct {
	r        *Registry
	building map[key]*deferredCodec
	resolved map[key]gobind.Codec
}

func (s *session) IsPlatformType(t reflect.Type) bool { return s.r.IsPlatformType(t) }

func (s *session) Codec(t reflect.Type, q string) (gobind.Codec, error) {
	k := key{t, q}
	if c, ok := s.r.cache.Load(k); ok {
		return c.(gobind.Codec), nil
	}
	if c, ok := s.resolved[k]; ok {
		return c, nil
	}
	if d, ok := s.building[k]; ok {
		return d, nil
	}
	d := &deferredCodec{t: t}
	s.building[k] = d
	defer delete(s.building, k)

	c, err := s.resolve(t, q)
	if err != nil {
		return nil, err
	}
	d.c = c
	s.resolved[k] = c
	return c, nil
}

func (s *session) resolve(t reflect.Type, q string) (gobind.Codec, error) {
	if c, ok := s.r.custom[key{t, q}]; ok {
		return c, nil
	}
	if q != "" {
		f, ok := s.r.qualifiers[q]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownQualifier, q)
		}
		base, err := s.Codec(t, "")
		if err != nil {
			return nil, err
		}
		return f(t, base)
	}
	if c := builtin(t); c != nil {
		return c, nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		elem, err := s.Codec(t.Elem(), "")
		if err != nil {
			return nil, err
		}
		return pointerCodec{t: t, elem: elem}, nil
	case reflect.Slice:
		elem, err := s.Codec(t.Elem(), "")
		if err != nil {
			return nil, err
		}
		return sliceCodec{t: t, elem: elem}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			break
		}
		elem, err := s.Codec(t.Elem(), "")
		if err != nil {
			return nil, err
		}
		return mapCodec{t: t, elem: elem}, nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Identity(s.r), nil
		}
	case reflect.Struct:
		c, err := gobind.StructCodec(t, s)
		if errors.Is(err, gobind.ErrNotApplicable) {
			break
		}
		if err != nil {
			return nil, err
		}
		s.r.log.Debug("binding built", zap.String("type", t.String()))
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", gobind.ErrNoCodec, t)
}

// deferredCodec stands in for a type whose resolution is in flight. It is
// filled in before anything holding it is published.
type deferredCodec struct {
	t reflect.Type
	c gobind.Codec
}

func (d *deferredCodec) DecodeValue(ctx context.Context, r *gobind.Reader) (any, error) {
	if d.c == nil {
		return nil, fmt.Errorf("codec: %s used before resolution finished", d.t)
	}
	return d.c.DecodeValue(ctx, r)
}

func (d *deferredCodec) EncodeValue(ctx context.Context, w gobind.Sink, v any) error {
	if d.c == nil {
		return fmt.Errorf("codec: %s used before resolution finished", d.t)
	}
	return d.c.EncodeValue(ctx, w, v)
}
