// Package orderbook holds the domain model for a single-instrument
// continuous double auction: the order lifecycle state machine with its
// append-only event history, the closed event set, and the book structure
// (red-black trees of FIFO price levels plus the two permanent market
// queues).
//
// The package mutates nothing on its own. The matching engine is the sole
// writer; the book stores order handles and resolves them through the
// engine's client registries, so no raw order pointers alias between the
// registry and the book.
package orderbook
