// Package proposalview rebuilds a denormalized proposal view on every
// governance-prefixed store write. See the Agent doc comment for its
// subscription-style scheduling; collection logic is not yet implemented.
package proposalview
