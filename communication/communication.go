package communication

// Communicator is an interface that abstracts the line channel between a player and the
// judge. Receive blocks until a full line is available and returns io.EOF once the
// channel is closed.
type Communicator interface {
	Receive() (string, error)
	Send(line string) error
}
