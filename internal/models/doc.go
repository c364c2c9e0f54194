// Package models defines the core domain models for tabsplit.
//
// # Models
//
//   - Participant: a person sharing the bill
//   - Item: a purchased line with a price and an ordered list of consumers
//   - SplitMode: how an item's cost divides among its consumers
//     (EqualSplit or WeightedSplit)
//
// # Design Principles
//
// 1. **Value semantics**: mutations replace whole records, use Clone before editing
// 2. **Ordered consumers**: Item.Consumers keeps insertion order, the portion
// rebalancer depends on it
// 3. **Integer IDs**: participants and items are referenced by IDs, never pointers
package models
