// Package jsonschema holds the JSON Schema subset that bindings and codecs
// project themselves into.
package jsonschema

// Schema is one node of an exported schema. Only the keywords a binding can
// state are modeled.
type Schema struct {
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"` // date-time, byte

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"` // bool or *Schema

	// Array
	Items *Schema `json:"items,omitempty"`
}
