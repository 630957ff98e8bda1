/*
Package badgerdb provides a commit store persisted in a badger database.

Data keys are kept under the "d/" prefix, version information under "m/".
Unlike the iavl store there is no merkle tree: every version hash is a sha256
chain over the previous hash and the operations of the commit.
*/
package badgerdb
