// Package exitcodes defines the standard exit codes used by trx-emitter.
package exitcodes

// Exit code constants used by trx-emitter:
//
// * Success (0): the document was emitted and every result passed
// * TestFailure (1): the document was emitted but contains failed results
// * RuntimeErr (2): the emission itself failed (bad input, I/O, panic)
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
