// Package chainregistry tracks the set of supported chains. See New for
// configuration; collection logic is not yet implemented.
package chainregistry
