// Package proposalfetch discovers new governance proposals per chain. See
// New for configuration; collection logic is not yet implemented.
package proposalfetch
