// Package data defines the records plotted by lassoview and the ways they are
// loaded.
//
// # Records
//
// A [Record] is an opaque application item: a map of named fields. The only
// identity a record has is its position in the sequence it was loaded in.
// That index is the stable key shared by selection masks, color arrays and
// link endpoints, so every view built from the same sequence lines up by
// construction.
//
// Views read quantitative values through an [Accessor]. [Field] is the common
// accessor; it rejects missing, non-numeric and non-finite values with an
// INVALID_ACCESSOR error so that a malformed column fails the render instead
// of silently dropping points.
//
// # Loading
//
// [ReadCSV] parses a header row followed by data rows and auto-types each
// cell: numeric strings become float64, empty cells become nil and all other
// cells stay strings. [ReadJSON] accepts an array of objects, the shape
// pandas produces with orient="records".
//
// A [Source] resolves a dataset name to records. [DirSource] reads files from
// a directory and [MongoSource] reads a MongoDB collection.
//
// # Links
//
// A [Link] is a pair of record indices. It has no identity beyond its
// endpoints and serializes as a two-element JSON array.
package data
