// Package metadata reads NativeFormat metadata blobs.
//
// A blob starts with the little-endian magic 0xDEADDFFD and a varuint count
// of scope definition handles. Records follow. Every record is a sequence of
// varuints, count-prefixed byte strings and handles, and every reference
// between records is a Handle: the record kind in the high byte and the blob
// offset in the low 24 bits.
//
//	r, err := metadata.NewReader(data, metadata.DefaultOptions())
//	for h := range r.ScopeDefinitions().All() {
//		scope, err := r.GetScopeDefinition(h)
//		name, err := r.GetString(scope.Name)
//	}
//
// Record-specific handle types (TypeDefinitionHandle, MethodHandle, ...)
// carry their kind in the Go type. As converts a raw Handle and fails with a
// tag_mismatch error when the tag disagrees, which callers classify as bad
// metadata via errors.IsBadMetadata.
//
// The writer subpackage produces blobs this package reads.
package metadata
