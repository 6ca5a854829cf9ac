// Package meeting provides per-user meeting transcript storage with
// semantic context retrieval.
//
// Meetings are namespaced by user ID for multi-user isolation; each user
// owns one persisted vector collection.
//
// Architecture:
//   - Store: persisted vector collection backend (chromem-go + bbolt)
//   - Embedder: text-to-vector conversion (mock for tests, OpenAI or
//     local ONNX for real deployments)
//   - Manager: orchestrates storing, context retrieval, history
//     browsing and deletion
//
// The Manager keeps the domain model strongly typed; the flat
// string-metadata representation required by the store is confined to
// the Record codec in this package.
package meeting
