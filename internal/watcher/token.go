package watcher

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/jmylchreest/auctionwatch/internal/logger"
)

// StopCommand is the console line that ends a watch.
const StopCommand = "stop"

// Token is a one-shot stop request shared between the loop and whatever
// asks it to stop. The zero value is not usable; call NewToken.
type Token struct {
	once sync.Once
	done chan struct{}
}

// NewToken creates an unset token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Stop requests a stop. Calling it more than once is harmless.
func (t *Token) Stop() {
	t.once.Do(func() { close(t.done) })
}

// Stopped reports whether a stop has been requested.
func (t *Token) Stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once a stop is requested.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// ListenForStop reads lines from r until one equals "stop" (ignoring case
// and surrounding space), then trips tok. It returns when r is exhausted
// without tripping the token.
func ListenForStop(r io.Reader, tok *Token) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, StopCommand) {
			logger.Info("stop requested, finishing current source")
			tok.Stop()
			return nil
		}
		if line != "" {
			logger.Debug("ignoring console input", "line", line)
		}
	}
	return scanner.Err()
}
