// Package tallyresults tracks governance proposal vote tallies. See New
// for configuration; collection logic is not yet implemented.
package tallyresults
