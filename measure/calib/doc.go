// Package calib maps detector channels to photon energy.
//
// [Linear] is the affine calibration E = Gain*channel + Offset, either given
// directly or fitted by least squares to reference lines with [FitLinear].
// [ComptonEnergy] gives the energy of a photon after Compton scattering,
// the kinematic reference scattered-peak centroids are compared against.
package calib
