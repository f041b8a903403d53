package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const progressWidth = 80

// progressBar redraws a single terminal line as items complete. It stays
// silent unless w is a terminal.
type progressBar struct {
	w      io.Writer
	prefix string
	suffix string
	total  int
	done   int
	on     bool
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newProgressBar(w io.Writer, prefix string, unit string, total int) *progressBar {
	if total != 1 {
		unit += "s"
	}
	pb := &progressBar{
		w:      w,
		prefix: fmt.Sprintf("%-15s", prefix),
		suffix: unit,
		total:  total,
		on:     isTerminal(w) && total > 0,
	}
	pb.draw()
	return pb
}

func (p *progressBar) draw() {
	if !p.on {
		return
	}
	size := progressWidth - len(p.prefix) - len(p.suffix) - 8
	if size < 10 {
		size = 10
	}
	filled := size * p.done / p.total
	fmt.Fprintf(p.w, "%s |%s%s| %d/%d %s\r",
		p.prefix, strings.Repeat("█", filled), strings.Repeat(".", size-filled), p.done, p.total, p.suffix)
}

func (p *progressBar) step() {
	p.done++
	p.draw()
}

func (p *progressBar) finish() {
	if p.on {
		fmt.Fprintln(p.w)
	}
}
