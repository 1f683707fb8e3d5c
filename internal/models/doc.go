// Package models defines the core domain models for settleup.
//
// # Models
//
//   - User: Registered account (email + password)
//   - Group: A trip or standing group; the scope of a settlement
//   - Transaction: An expense paid by one member and split among members
//   - Settlement: A payment a member confirmed to clear (part of) a debt
//
// # Design Principles
//
// 1. **Integer money**: every amount is int64 minor currency units (paise)
// 2. **Derived balances**: balances are never stored; they are recomputed from transactions
// 3. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 4. **Soft delete**: deleted transactions keep their row and drop out of settlement scope
package models
