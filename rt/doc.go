// Package rt implements the rill value substrate.
//
// This package contains:
//   - Tagged value representation and extraction
//   - Intrusive reference-counted ownership handles
//   - Shared sequence/associative stores with typed facades
//   - Record (object) layout and slot access
//   - Single-assignment futures with callback chaining
package rt
