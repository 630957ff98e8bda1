/*
Package spades defines the interfaces used throughout the wallet engine, such
as storage, transactions, handlers, events and queries.

We pass context through context.Context between the ledger, decorators and
handlers. To do so, spades defines some common keys to store info, such as
block height, chain id and the logger. Each extension, such as sigs, may add
its own keys to enrich the context with specific data.

There should exist two functions for every XYZ of type T
that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, chain id).
*/
package spades
