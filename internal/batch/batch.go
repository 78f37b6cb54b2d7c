// Package batch drives document generation across every template of a
// destination country: one record, many layouts, one document each. Failures
// are collected per template so one broken layout never sinks the rest of the
// run.
package batch

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mekonnen/cv-studio/internal/compose"
	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
)

// DefaultDelay is the pause between consecutive generations, pacing the
// asset fetches behind each document.
const DefaultDelay = 600 * time.Millisecond

// Composer renders one document from one template.
type Composer interface {
	Compose(ctx context.Context, tpl *layout.Template, rec *record.Record, agency string) (*compose.Document, error)
}

// DocumentSink receives each generated document as it is produced.
type DocumentSink interface {
	Put(ctx context.Context, doc *compose.Document) error
}

// UsageTracker records how many documents a run produced for an owner.
type UsageTracker interface {
	TrackGeneration(ctx context.Context, ownerID string, count int) error
}

// Override carries per-template values that replace what the record holds
// for that template's document. Empty members leave the record untouched.
type Override struct {
	RefNo         string `json:"refNo,omitempty"`
	MonthlySalary string `json:"monthlySalary,omitempty"`
}

// apply returns a clone of the record with the override's non-empty values
// merged in.
func (o Override) apply(rec *record.Record) *record.Record {
	out := rec.Clone()
	if o.RefNo != "" {
		out.Set("refNo", o.RefNo)
	}
	if o.MonthlySalary != "" {
		out.Set("monthlySalary", o.MonthlySalary)
	}
	return out
}

// Failure is one template that did not produce a document.
type Failure struct {
	TemplateID   string
	TemplateName string
	Err          error
}

// Summary is the outcome of a run.
type Summary struct {
	Generated int
	Failed    int
	Failures  []Failure
}

// Orchestrator runs batches sequentially with a fixed pause between
// documents.
type Orchestrator struct {
	composer Composer
	sink     DocumentSink
	usage    UsageTracker
	delay    time.Duration
}

// New returns an orchestrator with the default inter-document delay. The
// usage tracker may be nil when no accounting is wanted.
func New(composer Composer, sink DocumentSink, usage UsageTracker) *Orchestrator {
	return &Orchestrator{composer: composer, sink: sink, usage: usage, delay: DefaultDelay}
}

// SetDelay overrides the pause between documents.
func (o *Orchestrator) SetDelay(d time.Duration) { o.delay = d }

// Run generates one document per template. Overrides are keyed by template
// id: a template with an entry renders from a clone of the record with that
// entry merged in, templates without one render from the record's own values.
// The caller's record is never mutated. The run continues past per-template
// failures and reports them in the summary; only context cancellation stops
// it early.
func (o *Orchestrator) Run(ctx context.Context, templates []*layout.Template, rec *record.Record, overrides map[string]Override, agency, ownerID string) Summary {
	var sum Summary

	for i, tpl := range templates {
		if i > 0 && o.delay > 0 {
			select {
			case <-ctx.Done():
				sum.Failed += len(templates) - i
				for _, rest := range templates[i:] {
					sum.Failures = append(sum.Failures, Failure{TemplateID: rest.ID, TemplateName: rest.Name, Err: ctx.Err()})
				}
				o.track(ctx, ownerID, sum.Generated)
				return sum
			case <-time.After(o.delay):
			}
		}

		work := rec
		if ov, ok := overrides[tpl.ID]; ok {
			work = ov.apply(rec)
		}

		doc, err := o.composer.Compose(ctx, tpl, work, agency)
		if err == nil {
			err = o.sink.Put(ctx, doc)
		}
		if err != nil {
			log.Printf("[BATCH] template %s (%s) failed: %v", tpl.ID, tpl.Name, err)
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{TemplateID: tpl.ID, TemplateName: tpl.Name, Err: err})
			continue
		}
		sum.Generated++
	}

	o.track(ctx, ownerID, sum.Generated)
	return sum
}

func (o *Orchestrator) track(ctx context.Context, ownerID string, generated int) {
	if o.usage == nil || generated == 0 {
		return
	}
	if err := o.usage.TrackGeneration(ctx, ownerID, generated); err != nil {
		log.Printf("[BATCH] usage tracking failed for owner %s: %v", ownerID, err)
	}
}

var refPattern = regexp.MustCompile(`^(.*?)(\d+)$`)

// IncrementRef bumps the trailing number of a reference string, preserving
// its zero padding: "GH-0042" becomes "GH-0043". References with no trailing
// number are returned unchanged.
func IncrementRef(ref string) string {
	m := refPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return ref
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return ref
	}
	return m[1] + fmt.Sprintf("%0*d", len(m[2]), n+1)
}

// IncrementRefs bumps the record's reference number in place after a
// completed run so the next candidate starts from a fresh reference.
func IncrementRefs(rec *record.Record) {
	if ref := rec.Text("refNo"); ref != "" {
		rec.Set("refNo", IncrementRef(ref))
	}
}

// Bump returns a copy of the override with its reference number incremented.
func (o Override) Bump() Override {
	o.RefNo = IncrementRef(o.RefNo)
	return o
}
