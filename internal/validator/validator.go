package validator

import (
	"fmt"
	"regexp"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/model"
)

var allConnectionTypes = []model.ConnectionType{
	model.ConnParent, model.ConnChild, model.ConnValidates, model.ConnValidatedBy,
	model.ConnBlocks, model.ConnBlockedBy, model.ConnImplements, model.ConnImplementedBy,
	model.ConnTestedBy, model.ConnTests, model.ConnRelatesTo, model.ConnPrerequisite,
	model.ConnNext, model.ConnRelated, model.ConnOpposes, model.ConnBuildsOn,
	model.ConnContradicts, model.ConnCites, model.ConnExampleOf, model.ConnProves,
}

var bodyConnectionPattern = buildBodyConnectionPattern()

func buildBodyConnectionPattern() *regexp.Regexp {
	alt := ""
	for i, ct := range allConnectionTypes {
		if i > 0 {
			alt += "|"
		}
		alt += regexp.QuoteMeta(string(ct))
	}
	// Matches the legacy flat-connection token shape "<type>:<target>"
	// appearing in a Markdown body, where it has no business being.
	return regexp.MustCompile(`(?i)\b(` + alt + `):[A-Za-z0-9_.\-]+`)
}

// CheckBodyNoConnections enforces spec.md §4.3's body/frontmatter
// invariant: connection tokens must never appear in the Markdown body.
func CheckBodyNoConnections(id, body string) error {
	if loc := bodyConnectionPattern.FindString(body); loc != "" {
		return engramerr.New(engramerr.KindValidation, engramerr.IDConnectionsInBodyNotAllowed,
			id, fmt.Sprintf("remove connection token %q from the body; connections belong in frontmatter", loc))
	}
	return nil
}

// Report summarizes a full validation pass over a cortex's graph and
// Neuronas: legality violations, cardinality violations, cycle witnesses,
// and orphans, as one combined diagnostic. Legality and cardinality
// violations share ConnectionErrors.
type Report struct {
	ConnectionErrors []error
	CycleWitnesses   []string
	Orphans          []string
}

// ValidateAll checks every connection of every Neurona against the
// legality table and cardinality limits, then runs cycle and orphan
// detection against g. neuronasByID supplies the Type of a connection's
// target (unresolvable targets are skipped here — that's the sync
// orchestrator's dangling-connection warning, not a validation error).
func ValidateAll(neuronas []*model.Neurona, neuronasByID map[string]*model.Neurona, g *graph.Graph) Report {
	var report Report

	for _, n := range neuronas {
		counts := map[model.ConnectionType]int{}
		for _, gc := range n.AllConnections() {
			target, ok := neuronasByID[gc.TargetID]
			if !ok {
				continue
			}
			counts[gc.Type]++
			if err := ValidateConnection(n.Type, target.Type, gc.Type, counts[gc.Type]-1); err != nil {
				report.ConnectionErrors = append(report.ConnectionErrors, err)
			}
		}
	}

	report.CycleWitnesses = DetectCycles(g)
	report.Orphans = DetectOrphans(g)
	return report
}
