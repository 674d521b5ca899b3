// Package types defines the small, dependency-free vocabulary shared by the
// letter-transducer runtime: typed errors with stable categories, section
// kinds and processing modes.
//
// Design goals:
//   - Typed errors so callers can tell "this word is not in the dictionary"
//     apart from "the dictionary file is broken".
//   - Never panic on malformed dictionaries or input.
//
// This package has no dependencies beyond the standard library.
package types
