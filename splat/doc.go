// Package splat quantizes Gaussian-splat tables attribute group by
// attribute group.
//
// A splat table carries positions (x, y, z), a rotation quaternion
// (rot_0..rot_3), log scales (scale_0..scale_2), DC color (f_dc_0..f_dc_2),
// opacity and optionally higher-order spherical-harmonic coefficients
// (f_rest_N). Each group is clustered independently into its own codebook;
// Compressor runs the groups concurrently.
package splat
