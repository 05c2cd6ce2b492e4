// Package frauddetection classifies tallied proposals for fraud signals.
// See the Agent doc comment for its subscription-style scheduling;
// collection logic is not yet implemented.
package frauddetection
