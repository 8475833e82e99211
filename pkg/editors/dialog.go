package editors

import "errors"

// ErrDialogClosed guards dialog operations against a dialog that was never
// opened.
var ErrDialogClosed = errors.New("editor dialog is not open")

// RowError reports the scratch row (and optionally the cell within it) a
// dialog operation rejected, so the host can refocus it.
type RowError struct {
	Row  int
	Cell string
	Err  error
}

func (e *RowError) Error() string { return e.Err.Error() }

func (e *RowError) Unwrap() error { return e.Err }

// dialog is the scratch-buffer state machine shared by the popup editors:
// closed, then open with uncommitted edits in the scratch buffer, then
// committed or cancelled. Commit hands the buffer to the apply callback and
// closes only when that succeeds; cancel discards the buffer untouched.
type dialog[T any] struct {
	open    bool
	scratch T
}

func (d *dialog[T]) Open(initial T) {
	d.open = true
	d.scratch = initial
}

func (d *dialog[T]) IsOpen() bool { return d.open }

func (d *dialog[T]) Scratch() T { return d.scratch }

func (d *dialog[T]) SetScratch(value T) { d.scratch = value }

func (d *dialog[T]) Commit(apply func(T) error) error {
	if !d.open {
		return ErrDialogClosed
	}

	if err := apply(d.scratch); err != nil {
		return err
	}

	d.close()

	return nil
}

func (d *dialog[T]) Cancel() {
	d.close()
}

func (d *dialog[T]) close() {
	d.open = false

	var zero T

	d.scratch = zero
}
