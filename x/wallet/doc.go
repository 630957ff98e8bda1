/*
Package wallet implements quorum gated wallets.

A wallet holds native value under its own address and releases it only
when enough distinct owners confirmed a specific transfer. Owners confirm
either directly, by signing the host transaction that carries a
SignTransactionMsg, or together with a single Schnorr multi signature over
the confirmation digest of the transfer.

Every wallet is created by CreateWalletMsg and shares the handlers of this
package. Wallets do not know about each other.
*/
package wallet
