// Package lti describes linear time-invariant systems as rational transfer
// functions and grids of them, and turns them into statespace models through
// a pluggable Realizer.
//
// Polynomials are stored highest power first: s^2 + 2s + 5 is {1, 2, 5}.
package lti
