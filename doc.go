// Package nativeformat reads and writes NativeFormat metadata blobs and
// computes the canonical forms an ahead-of-time compiler shares generic code
// under.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	nativeformat/        Image: a blob opened with its modules loaded
//	├── codec/           Variable-length integer and string primitives
//	├── metadata/        Handles, record types and the blob Reader
//	│   └── writer/      Record graph serialization with hash-consing
//	├── typesystem/      Type and method entities, interning, canonical forms
//	├── loader/          Scope definitions materialized as type system modules
//	├── rooting/         Parallel reduction of root methods to shared bodies
//	├── typename/        Textual type and method names
//	├── fixture/         YAML scope descriptions compiled to record graphs
//	├── errors/          Structured error types for debugging
//	└── cmd/nfdump/      Developer CLI: build, dump, canon, root
//
// # Quick Start
//
// Open a blob and ask for the canonical form of a type:
//
//	img, err := nativeformat.Open(blob, nativeformat.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t, err := img.Type("System.Collections.Generic.List`1<System.String>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(t.ConvertToCanonForm(typesystem.CanonicalFormSpecific))
//	// System.Collections.Generic.List`1<System.__Canon>
//
// Reduce a program's roots to the method bodies that must be compiled:
//
//	res, err := rooting.New(rooting.DefaultOptions()).Root(ctx, img.EntryPoints())
//
// # Canonical Forms
//
// Specific canonicalization replaces every reference type argument with
// __Canon, so List<string> and List<object> share List<__Canon>. Value type
// arguments keep their own instantiations. Universal canonicalization
// replaces every argument with __UniversalCanon. The two forms are never
// mixed within one type.
//
// # Thread Safety
//
// Reader, Context, Module and Image are safe for concurrent use. Entities
// are interned: two lookups of the same type or method return the same
// pointer, and identity comparison is the equality test. Writer is not
// safe for concurrent use.
//
// # Missing Metadata
//
// A reference into a scope that is not loaded yields an error for which
// errors.IsMissingMetadata reports true. Callers may skip the affected
// entity; rooting records such roots in Result.Skipped. Corrupt blobs yield
// errors.IsBadMetadata and are never tolerated.
package nativeformat
