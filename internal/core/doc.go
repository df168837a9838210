// Package core provides the service layer between transports and the cell
// codecs.
//
// A [Service] is built once per process from a codec configuration and an
// attribute directory. It owns one instance of each codec and adds what a
// transport needs around them: request-scoped logging, batch decoding with
// correlation ids and a concurrency limit, and user-facing error messages.
//
// # Batches
//
// [Service.DenormalizeBatch] decodes many additional-attributes cells in one
// call. Each batch gets a UUID that appears in every log line it produces.
// Cells that fail are reported individually; the batch itself only fails
// when it is too large, when no slot frees up in time, or when the request
// is cancelled.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CFG001-CFG002: codec configuration errors
//   - ATTR001-ATTR002: entity type and attribute lookups
//   - OP001: unsupported operations
//   - VAL001: value kind mismatches
//   - REQ001-REQ005: request, batch and cancellation errors
//   - DB001-DB003: attribute database connectivity
package core
