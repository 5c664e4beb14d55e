// Package sink delivers rendered indexes to their destination.
package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/ooker777/breadcrumbs/internal/apperr"
	"github.com/ooker777/breadcrumbs/internal/storage"
)

// Sink names accepted by New.
const (
	NameStdout    = "stdout"
	NameFile      = "file"
	NameClipboard = "clipboard"
)

// Sink receives index text.
type Sink interface {
	Deliver(ctx context.Context, text string) error
}

// Writer writes index text to an io.Writer.
type Writer struct {
	W io.Writer
}

// Deliver implements Sink.
func (s Writer) Deliver(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(s.W, text)
	return err
}

// File writes index text to a note inside the vault.
type File struct {
	Store storage.Provider
	Path  string
}

// Deliver implements Sink.
func (s File) Deliver(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Store.Write(s.Path, []byte(text)); err != nil {
		return fmt.Errorf("sink: write %s: %w", s.Path, err)
	}
	return nil
}

// Clipboard copies index text to the system clipboard.
type Clipboard struct {
	write func(string) error
}

// NewClipboard returns a Clipboard backed by the system clipboard.
func NewClipboard() Clipboard {
	return Clipboard{write: clipboard.WriteAll}
}

// Deliver implements Sink.
func (s Clipboard) Deliver(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	write := s.write
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(text); err != nil {
		return fmt.Errorf("sink: clipboard: %w", err)
	}
	return nil
}

// New selects a sink by name. file is the vault path used by the file sink
// and w is the destination of the stdout sink.
func New(name, file string, store storage.Provider, w io.Writer) (Sink, error) {
	switch strings.ToLower(name) {
	case "", NameStdout:
		return Writer{W: w}, nil
	case NameFile:
		if file == "" || store == nil {
			return nil, fmt.Errorf("%w: file sink needs a vault path", apperr.ErrInvalidInput)
		}
		return File{Store: store, Path: file}, nil
	case NameClipboard:
		if clipboard.Unsupported {
			return nil, fmt.Errorf("%w: clipboard not available on this system", apperr.ErrInvalidInput)
		}
		return NewClipboard(), nil
	}
	return nil, fmt.Errorf("%w: unknown sink %q", apperr.ErrInvalidInput, name)
}
