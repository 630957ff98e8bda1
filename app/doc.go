/*
Package app contains the pieces that turn extensions into a ledger: a router
dispatching messages to handlers, a decorator chain, the standard
transaction format and the Ledger that owns the state and serializes every
state transition.
*/
package app
