// Package payload models serialized form data as ordered name/value pairs
// and converts HTML forms into that shape.
//
// A Payload mirrors what a browser submits for a form: field order is kept,
// duplicate names are allowed, and a value can itself be a nested Payload
// (used to carry the skin form inside a compile request).
package payload
