package term

import (
	"os"
	"os/signal"
	"syscall"

	xterm "golang.org/x/term"
)

// Size is a terminal dimension in cells.
type Size struct {
	Width, Height int
}

// GetSize reads f's current size, falling back to 80x24 if the ioctl fails
// (e.g. f is not a tty), matching tui/screen.go's NewScreen fallback.
func GetSize(f *os.File) Size {
	w, h, err := xterm.GetSize(int(f.Fd()))
	if err != nil {
		return Size{Width: 80, Height: 24}
	}
	return Size{Width: w, Height: h}
}

// ResizeWatcher delivers a Size on every SIGWINCH. Per spec §5's
// single-threaded cooperative model, it never touches engine state itself —
// it only delivers notifications onto a channel the owning thread drains,
// generalizing tui/screen.go's handleResize (which mutated Screen's buffers
// directly from its own goroutine under a mutex).
type ResizeWatcher struct {
	sigCh  chan os.Signal
	out    chan Size
	done   chan struct{}
	source *os.File
}

// WatchResize starts listening for SIGWINCH against f (typically os.Stdout).
func WatchResize(f *os.File) *ResizeWatcher {
	w := &ResizeWatcher{
		sigCh:  make(chan os.Signal, 1),
		out:    make(chan Size, 1),
		done:   make(chan struct{}),
		source: f,
	}
	signal.Notify(w.sigCh, syscall.SIGWINCH)
	go w.loop()
	return w
}

func (w *ResizeWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.sigCh:
			select {
			case w.out <- GetSize(w.source):
			default:
				// a resize is already pending; the next GetSize call will
				// pick up the latest size anyway.
			}
		}
	}
}

// Events returns the channel of delivered sizes.
func (w *ResizeWatcher) Events() <-chan Size { return w.out }

// Stop unregisters the signal and ends the watcher goroutine.
func (w *ResizeWatcher) Stop() {
	signal.Stop(w.sigCh)
	close(w.done)
}
