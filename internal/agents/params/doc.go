// Package params tracks governance parameters per chain. See New for
// configuration; collection logic is not yet implemented.
package params
