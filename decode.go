package gobind

import "context"

// absentMarker backs the ABSENT slot sentinel. It has a field so that every
// allocation is a distinct pointer.
type absentMarker struct{ _ byte }

var absent any = new(absentMarker)

// Decode reads one JSON object from src into a T.
func (b *TypeBinding[T]) Decode(ctx context.Context, src Source, opts ...DecodeOpt) (T, error) {
	v, err := b.decodeTop(ctx, src, nil, opts)
	return v, err
}

// DecodeWithMeta decodes like Decode and additionally reports, per JSON
// name, whether the field was seen, was null, or took its parameter default.
func (b *TypeBinding[T]) DecodeWithMeta(ctx context.Context, src Source, opts ...DecodeOpt) (Decoded[T], error) {
	pm := PresenceMap{}
	v, err := b.decodeTop(ctx, src, pm, opts)
	if err != nil {
		return Decoded[T]{}, err
	}
	return Decoded[T]{Value: v, Presence: pm}, nil
}

func (b *TypeBinding[T]) decodeTop(ctx context.Context, src Source, pm PresenceMap, opts []DecodeOpt) (T, error) {
	var zero T
	opt := lastDecodeOpt(opts)
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	r := NewReader(enforce(src, opt))
	v, err := b.decode(ctx, r, pm)
	if err != nil {
		return zero, err
	}
	if err := r.End(); err != nil {
		return zero, err
	}
	return v, nil
}

// DecodeValue implements Codec.
func (b *TypeBinding[T]) DecodeValue(ctx context.Context, r *Reader) (any, error) {
	v, err := b.decode(ctx, r, nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (b *TypeBinding[T]) decode(ctx context.Context, r *Reader, pm PresenceMap) (T, error) {
	var zero T
	if err := r.BeginObject(); err != nil {
		return zero, err
	}
	slots := make([]any, len(b.fields))
	for i := range slots {
		slots[i] = absent
	}

	for {
		name, ok, err := r.NextName()
		if err != nil {
			return zero, err
		}
		if !ok {
			break
		}
		idx := b.sel.Select(name)
		if idx == NoMatch {
			if err := r.Skip(); err != nil {
				return zero, err
			}
			continue
		}
		fb := &b.fields[idx]
		if slots[idx] != absent {
			return zero, Issues{newIssue(CodeDuplicateValue, r.Path(), fb.JSONName)}
		}
		if pm != nil {
			tok, err := r.Peek()
			if err != nil {
				return zero, err
			}
			flags := PresenceSeen
			if tok.Kind == TokenNull {
				flags |= PresenceWasNull
			}
			pm[fb.JSONName] = flags
		}
		v, err := fb.Codec.DecodeValue(ctx, r)
		if err != nil {
			return zero, nestedError(r, err)
		}
		slots[idx] = v
	}

	// r now points at the object itself.
	var missing Issues
	for i := range b.fields {
		fb := &b.fields[i]
		if fb.ConstructorSupplied && !fb.Optional && slots[i] == absent {
			missing = AppendIssues(missing, newIssue(CodeMissingRequiredValue, r.Path(), fb.JSONName))
			if IsFailFast(ctx) {
				break
			}
		}
	}
	if len(missing) > 0 {
		return zero, missing
	}

	args := newArgs(b.params, b.paramIdx)
	byParam := make(map[int]*FieldBinding, len(b.params))
	for i := range b.fields {
		fb := &b.fields[i]
		if !fb.ConstructorSupplied {
			continue
		}
		byParam[fb.ConstructorIndex] = fb
		if slots[i] != absent {
			args.supply(fb.ConstructorIndex, slots[i])
		}
	}
	for _, pi := range args.applyDefaults() {
		if fb, ok := byParam[pi]; ok && pm != nil {
			pm[fb.JSONName] |= PresenceDefaultApplied
		}
	}

	v, err := b.construct(args)
	if err != nil {
		it := newIssue(CodeConstructFailed, r.Path(), "")
		it.Hint = err.Error()
		it.Message += ": " + it.Hint
		it.Cause = err
		return zero, Issues{it}
	}

	for i := range b.fields {
		fb := &b.fields[i]
		if fb.ConstructorSupplied || slots[i] == absent {
			continue
		}
		if err := b.props[i].Set(&v, slots[i]); err != nil {
			it := newIssue(CodeInvalidType, childPath(r.Path(), fb.JSONName), fb.JSONName)
			it.Hint = err.Error()
			it.Message += ": " + it.Hint
			it.Cause = err
			return zero, Issues{it}
		}
	}
	return v, nil
}

// nestedError keeps Issues from nested codecs (they carry absolute paths) and
// wraps anything else as a parse error at the reader's path.
func nestedError(r *Reader, err error) error {
	if _, ok := AsIssues(err); ok {
		return err
	}
	return IssueAt(r, CodeParseError, err.Error(), err)
}

func childPath(base, name string) string { return base + "." + name }
