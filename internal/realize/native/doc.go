// Package native realizes transfer functions and discretizes state-space
// systems in process with gonum.
//
// Transfer functions are realized in controllable canonical form. A grid of
// them becomes the block-diagonal union of its entries, which is generally
// not minimal: the state order is the sum of the entry orders and zero
// entries add no states.
//
// Supported conversions:
//
//	zoh      exp([A B; 0 0]·T)
//	foh      exp([A·T B·T 0; 0 0 I; 0 0 0]), triangle hold
//	tustin   (I - A·T/2)^-1 based bilinear map
//	prewarp  tustin with T/2 replaced by tan(w·T/2)/w
//	impulse  Φ = exp(A·T), input scaled by T
//	matched  poles and zeros mapped through z = exp(s·T), single channel only
package native
