/*
Package cash holds the native value of the ledger.

Every address has a single int64 balance. Value only moves through the
Controller, which also notifies receivers registered for a destination
address. Wallet execution uses the same path as a plain SendMsg.
*/
package cash
