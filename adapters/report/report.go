// Package report renders a per-run Markdown summary from a finished
// manifest and its stage sections (spec.md §6, "report rendering").
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"

	"chillgrid/domain/run"
)

// Renderer implements ports.ReportRenderer.
type Renderer struct{}

// NewRenderer creates a Markdown report renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// Render builds a Markdown document from the manifest and any per-stage
// narrative sections the caller supplies and returns the raw Markdown. It
// also converts the document to HTML, but that HTML is discarded: it is
// neither returned nor persisted.
func (rr *Renderer) Render(ctx context.Context, manifest *run.Manifest, sections map[string]string) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", manifest.ID)
	fmt.Fprintf(&b, "- Started: %s\n", manifest.StartedAt)
	fmt.Fprintf(&b, "- Input fingerprint: %s\n", manifest.InputFingerprint)
	fmt.Fprintf(&b, "- Final confidence: %.3f\n\n", manifest.FinalConfidence)

	if manifest.Halted() {
		fmt.Fprintf(&b, "## HALT\n\nStage **%s** halted: %s\n\n", manifest.Halt.Stage, manifest.Halt.Reason)
	}

	b.WriteString("## Stage timings\n\n| Stage | Duration (ms) | Confidence |\n|---|---|---|\n")
	for _, t := range manifest.StageTimings {
		fmt.Fprintf(&b, "| %s | %d | %.3f |\n", t.Stage, t.DurationMs, t.Confidence)
	}
	b.WriteString("\n")

	for _, name := range []string{"classification", "verification", "gaps", "synchronization", "derived"} {
		if text, ok := sections[name]; ok {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", strings.Title(name), text)
		}
	}

	doc := b.String()
	_ = markdown.ToHTML([]byte(doc), nil, nil) // result discarded; not returned or persisted
	return []byte(doc), nil
}
