// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentSource: Enumerates and materialises documents from one source
//   - Ledger: Durable record of what has been ingested (SQLite)
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Vector storage and nearest-neighbour search
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Chat completion. Without it, the analyze command is disabled.
//   - LogQuerier: Remote log backend. Only needed by windowed log sources.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or source package
package driven
