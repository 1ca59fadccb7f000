// meta/meta.go
package meta

// CONTINUATION_P is the success probability of the geometric game length draw.
const CONTINUATION_P = 0.00346

// MIN_MOVES is the shortest game that can be played.
const MIN_MOVES = 1

// MAX_MOVES caps the drawn game length.
const MAX_MOVES = 400

// Protocol tokens exchanged with the judge, one per line.
const (
	INIT  = "INIT"
	OK    = "OK"
	START = "START"
)
