// Package document implements the row model used by the query engine.
//
// A hierarchical document (objects, arrays and scalars, as produced by a JSON
// decoder) is flattened into rows. Each row maps a path key to the scalar
// found at that position:
//
//	{"name": "alice", "tags": ["a", "b"], "address": {"city": "Izmir"}}
//
// flattens to a single row with the keys
//
//	name, tags[0], tags[1], address.city
//
// Every key also carries a family, the same path with array indices removed
// (tags[1] belongs to family "tags"). Families let aggregates collect one
// logical field across all elements of an array.
//
// Unflatten reverses the process and Peel navigates to a subtree before
// flattening.
//
// # Scalars
//
// Values are represented by the Value type, a closed set of kinds: null,
// boolean, number, string, date and date-time. Numbers remember whether they
// were integral in the source so that integers survive a round trip.
package document
