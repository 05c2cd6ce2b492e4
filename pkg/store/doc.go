/*
Package store provides an embedded, versioned key/value store on top of
bbolt.

KV is the byte-level layer: it owns a single bbolt bucket, rewrites every
key with a global prefix so multiple logical stores can share one database
file, and fans out Put/Delete notifications to prefix-scoped subscribers
through an in-process broker (bbolt itself has no change-feed).

FallbackStore[T] layers a revision history on top of KV. Every Insert
appends a new revision rather than overwriting; Get can return either the
current revision or walk backward for the latest one that isn't an
EntryError. Revisions below the oldest retained Ok result are pruned on
every insert, so history never grows without bound. Entry[T] values are
serialized with encoding/gob so the Ok(T)/Err(EntryError) sum survives a
round trip without a JSON discriminator field.
*/
package store
