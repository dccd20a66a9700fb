// Package errors provides structured error types for the nativeformat module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, record kind, type name and cause chain.
//
// Two kinds drive caller policy. KindBadMetadata means the blob is corrupt and
// the caller should abort. KindMissingMetadata (and MissingMetadataError) means
// a reference points outside the loaded modules; callers may skip the entity.
//
//	if errors.IsMissingMetadata(err) {
//		// skip this method
//	}
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindBadMetadata).
//		Record("TypeDefinition").
//		Detail("count %d exceeds blob", n).
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
