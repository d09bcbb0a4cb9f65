// Package dcrt implements the double-CRT (RNS) representation of
// cyclotomic ring elements underlying the obfuscation pipeline.
//
// A Context fixes the ring dimension, the CRT prime chain, the gadget
// base and the Gaussian width; RingElement carries one residue row per
// prime together with a coefficient/evaluation domain flag. All modular
// arithmetic and number-theoretic transforms are delegated to a limb
// backend, with Lattigo as the production implementation.
package dcrt
