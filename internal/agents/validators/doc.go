// Package validators tracks each chain's validator set. See New for
// configuration; collection logic is not yet implemented.
package validators
