/*
Package x contains the authentication glue shared by all extensions.

Each extension lives in a sub-package (sigs, cash, wallet, utils) and
receives an Authenticator in its constructors instead of depending on a
concrete signature scheme.
*/
package x
