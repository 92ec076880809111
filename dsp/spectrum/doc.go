// Package spectrum measures the frequency content of rendered audio.
//
// [Analyzer] computes Hann-windowed magnitude spectra of whole blocks;
// [Goertzel] evaluates the level of a single known frequency.
package spectrum
