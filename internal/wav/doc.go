// Package wav wraps raw linear PCM in a minimal RIFF/WAVE container and reads
// such containers back.
package wav
