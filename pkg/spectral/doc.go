// Package spectral implements the operations that act along the spectral
// (Z, NAXIS3) axis of a data-cube: cutting a channel range, repeating the
// cube to tile a free spectral range, and oversampling every pixel spectrum
// by linear interpolation.
//
// Each operation takes a cube and its header and returns new values; the
// inputs are never modified. Header calibration keys are rewritten so the
// physical coordinate of every retained sample is unchanged.
package spectral
