package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Kind names an entity kind in the report.
type Kind string

const (
	KindBlockSet       Kind = "block set"
	KindExpansionBlock Kind = "expansion block"
	KindExpansion      Kind = "expansion"
	KindCard           Kind = "card"
	KindCardPrint      Kind = "card print"
)

var reportKinds = []Kind{KindBlockSet, KindExpansionBlock, KindExpansion, KindCard, KindCardPrint}

// Failure is one record the pipeline could not import.
type Failure struct {
	Kind Kind
	Name string
	Err  error
}

type Tally struct {
	Inserted int
	Failed   int
}

// Report accumulates the outcome of a run.
type Report struct {
	DeletedBlockSets int64
	DeletedCards     int64
	Tallies          map[Kind]*Tally
	Failures         []Failure
	// Aborted holds the fatal error that stopped the run, if any.
	Aborted error
}

func newReport() *Report {
	r := &Report{Tallies: make(map[Kind]*Tally, len(reportKinds))}
	for _, k := range reportKinds {
		r.Tallies[k] = &Tally{}
	}
	return r
}

func (r *Report) inserted(k Kind) {
	r.Tallies[k].Inserted++
}

func (r *Report) failed(k Kind, name string, err error) {
	r.Tallies[k].Failed++
	r.Failures = append(r.Failures, Failure{Kind: k, Name: name, Err: err})
}

// Inserted returns how many records of kind k were written.
func (r *Report) Inserted(k Kind) int { return r.Tallies[k].Inserted }

// Failed returns how many records of kind k were rejected or skipped.
func (r *Report) Failed(k Kind) int { return r.Tallies[k].Failed }

// FailuresOf returns the failures recorded for kind k, in run order.
func (r *Report) FailuresOf(k Kind) []Failure {
	var out []Failure
	for _, f := range r.Failures {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// WriteSummary prints deleted, inserted and failed counts followed by every
// failed record.
func (r *Report) WriteSummary(w io.Writer) {
	p := message.NewPrinter(language.English)

	p.Fprintln(w, strings.Repeat("=", 70))
	p.Fprintf(w, "Deleted %d old %s and %d old %s\n",
		r.DeletedBlockSets, plural(r.DeletedBlockSets, "set"),
		r.DeletedCards, plural(r.DeletedCards, "card"))
	for _, k := range reportKinds {
		t := r.Tallies[k]
		p.Fprintf(w, "%-16s inserted %6d   failed %6d\n", k, t.Inserted, t.Failed)
	}
	if len(r.Failures) > 0 {
		p.Fprintf(w, "Failed records:\n")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s %q: %v\n", f.Kind, f.Name, f.Err)
		}
	}
	if r.Aborted != nil {
		fmt.Fprintf(w, "Import aborted: %v\n", r.Aborted)
	} else {
		fmt.Fprintln(w, "Done!")
	}
	p.Fprintln(w, strings.Repeat("=", 70))
}
