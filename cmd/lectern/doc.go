// Command lectern is the CLI for building speech datasets from recorded
// lectures: fetching course audio, normalizing and trimming it, cleaning
// transcripts, and assembling the training manifest.
package main
