// Package hash provides the checksum used by geoprefix snapshots.
//
// Snapshots are verified with CRC32-Castagnoli (CRC32C), which Go computes with
// SSE4.2 or the ARM CRC extension when available.
//
//	sum := hash.CRC32C(payload)
package hash
