// Package exchange provides the storage engine of a small multi-currency
// ledger service: registered users own individual or joint accounts holding
// USD, EUR and GBP balances, and every command runs against one shared store.
//
// The core functionalities include:
//   - Store Management: users and accounts kept in memory as a whole, with
//     the ownership and balance invariants enforced by the mutating methods.
//   - Data Persistence: a human-readable, line-oriented snapshot that is
//     always decoded in full and rewritten in full (see DecodeStore and
//     EncodeStore).
//   - Locking: a coarse shared/exclusive lock spanning the whole store, held
//     across every load-mutate-save cycle (see Repository).
//   - Currency Conversion: a fixed rate table pivoted through EUR.
//   - Sessions: the per-connection authentication slot used by the server.
//
// This package serves as the foundation for the `xchg` command-line tool and
// for the line protocol server in the server package.
package exchange
