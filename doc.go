// Package gobind binds structured documents to Go types through per-type
// bindings:
//
// - A TypeBinding[T] maps wire names to constructor parameters and settable properties
// - Decoding reads a token Source (JSON, YAML, CBOR, MessagePack) and builds T
// - Encoding writes T to a Sink in canonical field order, or preserves input presence
// - Failures surface as Issues (path, code, message) and can be inspected with AsIssues
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place codecs under codec/, descriptor DSL under dsl/, format adapters under source/ and sink/, and the CLI under cmd/gobind.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	b, err := gobind.Bind[Account](codec.Default())
//	v, err := b.Decode(ctx, gobind.JSONBytes(data))
//	dm, err := b.DecodeWithMeta(ctx, gobind.JSONBytes(data))
//
//	w := gobind.NewJSONWriter(out)
//	err = b.Encode(ctx, v, w)
//	err = b.EncodePreserving(ctx, dm, w)
//	err = w.Flush()
package gobind
