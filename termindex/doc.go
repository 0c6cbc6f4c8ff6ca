// Package termindex provides an in-memory inverted index from terms to documents.
//
// Postings are Roaring bitmaps over dense internal document numbers. A sorted term
// dictionary answers prefix queries by range scan, which is what the prefix tree strategy
// needs for descendant lookups.
//
// # Queries
//
// Search executes the boolean queries of package query:
//
//	ids, err := ix.Search(query.NewOr(
//	    query.Prefix{Prefix: "shape/7"},
//	    query.NewTerms("shape/e+", "shape/e*"),
//	))
//
// # Snapshots
//
// WriteSnapshot and ReadSnapshot serialize the index as a versioned binary snapshot with optional
// LZ4 or Zstandard compression and a CRC32 trailer:
//
//	magic "GPTI" u32 | version u16 | compression u8 | reserved u8 | size u64 | body size u64 | body | crc32 u32
//
// The checksum covers the uncompressed payload. CRC32 detects accidental corruption only.
package termindex
