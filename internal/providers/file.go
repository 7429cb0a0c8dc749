package providers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

// File hands the prompt to a person, waits for them to save the answer to a
// response file and press Enter, then reads and deletes that file.
type File struct {
	path string
	in   *bufio.Reader
	out  io.Writer

	// one hand-off at a time; concurrent reviews would share the file.
	mu sync.Mutex

	readOnce sync.Once
	lines    chan enterLine
	// gen numbers hand-offs. A line is stamped with the gen current when it
	// was read and only counts for that hand-off.
	gen atomic.Uint64
}

type enterLine struct {
	gen uint64
	err error
}

// NewFile creates a File reviewer that reads the response from path.
func NewFile(path string, in io.Reader, out io.Writer) *File {
	return &File{path: path, in: bufio.NewReader(in), out: out, lines: make(chan enterLine)}
}

func (f *File) Name() string { return "file" }

func (f *File) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen := f.gen.Add(1)

	banner := color.New(color.FgCyan, color.Bold)
	banner.Fprintln(f.out, "=== COPY THE PROMPT BELOW INTO YOUR AI CHAT ===")
	fmt.Fprintln(f.out, req.UserPrompt)
	banner.Fprintln(f.out, "=== AFTER GETTING THE RESPONSE ===")
	banner.Fprintf(f.out, "=== Save the response to a file named '%s' ===\n", f.path)
	banner.Fprintln(f.out, "=== Then press Enter to continue ===")

	if err := f.waitForEnter(ctx, gen); err != nil {
		return ReviewResponse{}, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ReviewResponse{}, fmt.Errorf("response file %q not found; save the response there before pressing Enter", f.path)
		}
		return ReviewResponse{}, fmt.Errorf("reading response file: %w", err)
	}
	if err := os.Remove(f.path); err != nil {
		return ReviewResponse{}, fmt.Errorf("removing response file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return ReviewResponse{}, fmt.Errorf("response file %q is empty", f.path)
	}
	return ReviewResponse{Content: text}, nil
}

// waitForEnter blocks until a line read during hand-off gen arrives or ctx is
// done. Lines left over from an earlier, abandoned hand-off are discarded. EOF
// counts as Enter so piped input works. The reader is owned by one goroutine
// for the life of f.
func (f *File) waitForEnter(ctx context.Context, gen uint64) error {
	f.readOnce.Do(func() { go f.readLines() })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l := <-f.lines:
			if l.gen != gen {
				continue
			}
			if l.err != nil {
				return fmt.Errorf("waiting for Enter: %w", l.err)
			}
			return nil
		}
	}
}

func (f *File) readLines() {
	for {
		_, err := f.in.ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		f.lines <- enterLine{gen: f.gen.Load(), err: err}
	}
}
