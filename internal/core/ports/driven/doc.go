// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VectorStore: Collection management, upsert and nearest-neighbour query
//   - EmbeddingService: Generates vector embeddings
//   - PageStore: Raw page text and modification times
//   - PromptStore: Profile-scoped prompt text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompletionGateway: Chat completions. Without it the assistant is disabled.
//   - RunStore: Index run journal. Without it runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
