// Package report writes the timing lines printed by the harness.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

const bufferSize = 64 * 1024

var bufPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Printer buffers output lines until Flush. It is not safe for concurrent use.
type Printer struct {
	buff *bufio.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{buff: bufio.NewWriterSize(w, bufferSize)}
}

// Banner writes msg followed by a newline.
func (p *Printer) Banner(msg string) {
	p.buff.WriteString(msg)
	p.buff.WriteByte('\n')
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	p.buff.WriteByte('\n')
}

// Result writes the line for one timed call. The line is indented two
// spaces, the description is left-aligned to 50 columns and the elapsed
// nanoseconds are right-aligned to 15.
func (p *Printer) Result(n uint64, desc string, elapsed time.Duration) {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	fmt.Fprintf(b, "  Solving fib:%d with %-50s took %15d ns\n", n, desc, elapsed.Nanoseconds())
	p.buff.Write(b.Bytes())
	bufPool.Put(b)
}

// Flush writes out everything buffered and returns the first write error
// seen since the Printer was created.
func (p *Printer) Flush() error {
	return p.buff.Flush()
}
