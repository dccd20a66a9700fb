// Package typesystem models the types and methods of a managed program and
// computes their canonical forms for shared generic code.
//
// A Context owns every entity. Named definitions come from a Module (see the
// loader package); instantiated, array, byref, pointer and signature
// variable types are interned by the Context, so two TypeDescs denote the
// same type iff they are the same object.
//
// Canonicalization maps a type to the shape its generated code is shared
// under:
//
//	ctx.ConvertToCanon(listOfString, typesystem.CanonicalFormSpecific)  // __Canon
//	listOfString.ConvertToCanonForm(typesystem.CanonicalFormSpecific)  // List`1<__Canon>
//	listOfInt.ConvertToCanonForm(typesystem.CanonicalFormSpecific)     // List`1<Int32>
//	listOfInt.ConvertToCanonForm(typesystem.CanonicalFormUniversal)    // List`1<__UniversalCanon>
//
// Under the Specific policy reference types collapse to __Canon and value
// types keep their identity, their generic arguments canonicalized in turn.
// Under the Universal policy every argument collapses to __UniversalCanon.
// The two policies never mix within one form.
//
// Results are cached on each type and method. Caches and intern tables are
// safe for concurrent use: readers never block, and when two goroutines race
// to create the same entry the first one published is kept.
//
// Passing CanonicalFormAny to a conversion and asking __UniversalCanon for
// its base type are programming errors and panic.
package typesystem
