// Package store holds the mutable in-memory state the token endpoints read
// from: permissions per audience, pending authorization codes, the fake
// end-user profile and the access-token custom claims.
//
// Every store owns its own lock and hands out copies, so callers never share
// slices with the store. Nothing is persisted; a restart starts from the
// configured defaults.
package store
