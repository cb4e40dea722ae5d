// Package query implements the EQL (Engram Query Language) lexer,
// parser, AST evaluator, and query-mode dispatch (spec.md §4.7).
package query

import "github.com/engram-cortex/engram/internal/model"

// ConnectionView is a flattened, type-erased view of one of a Neurona's
// connections, used by link() conditions and the connection filter kind.
type ConnectionView struct {
	Type     string
	TargetID string
}

// View is the narrow read-only projection of a Neurona the evaluator
// walks the AST against: id, title, type, tags, connections, and the
// three context scalars spec.md §4.7 names. It never holds a live
// *model.Neurona reference (spec.md §5 "Memory discipline").
type View struct {
	ID              string
	Title           string
	Type            string
	Tags            []string
	Connections     []ConnectionView
	ContextStatus   string
	ContextPriority string
	ContextAssignee string
}

// BuildView projects a model.Neurona into the evaluator's View shape.
func BuildView(n *model.Neurona) View {
	conns := make([]ConnectionView, 0, len(n.Connections))
	for _, gc := range n.AllConnections() {
		conns = append(conns, ConnectionView{Type: string(gc.Type), TargetID: gc.TargetID})
	}
	status, _ := n.Context.Status()
	priority, _ := n.Context.Priority()
	assignee, _ := n.Context.Assignee()

	return View{
		ID:              n.ID,
		Title:           n.Title,
		Type:            string(n.Type),
		Tags:            n.Tags,
		Connections:     conns,
		ContextStatus:   status,
		ContextPriority: priority,
		ContextAssignee: assignee,
	}
}

func (v View) hasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
