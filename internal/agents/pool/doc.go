// Package pool tracks staking pool data per chain. See New for
// configuration; collection logic is not yet implemented.
package pool
