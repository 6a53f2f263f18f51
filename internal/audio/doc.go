// Package audio implements the dataset audio passes: batch normalization
// of raw recordings to a uniform WAV profile, and trailing-silence removal
// on the normalized files.
package audio
