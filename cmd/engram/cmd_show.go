package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/uri"
)

var (
	showJSON        bool
	showNoBody      bool
	showNoConnections bool
)

var showCmd = &cobra.Command{
	Use:   "show <id|uri>",
	Short: "Show a Neurona's metadata, connections, and body",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "emit JSON instead of plain text")
	showCmd.Flags().BoolVar(&showNoBody, "no-body", false, "omit the Markdown body")
	showCmd.Flags().BoolVar(&showNoConnections, "no-connections", false, "omit connections")
}

// showOutput is the JSON shape for `show --json`.
type showOutput struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Type        string                 `json:"type"`
	Tags        []string               `json:"tags,omitempty"`
	Connections []connectionOutput     `json:"connections,omitempty"`
	Body        string                 `json:"body,omitempty"`
}

type connectionOutput struct {
	Group  string `json:"group"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Weight int    `json:"weight"`
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	if strings.HasPrefix(id, "neurona://") {
		u, err := uri.Parse(id)
		if err != nil {
			return err
		}
		id = u.NeuronaID
	}

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, body, err := store.ReadNeuronaWithBody(id)
	if err != nil {
		return err
	}

	out := showOutput{ID: n.ID, Title: n.Title, Type: string(n.Type), Tags: n.Tags}
	if !showNoBody {
		out.Body = strings.TrimSpace(body)
	}
	if !showNoConnections {
		for _, gc := range n.AllConnections() {
			out.Connections = append(out.Connections, connectionOutput{
				Group:  gc.Group,
				Target: gc.TargetID,
				Type:   string(gc.Type),
				Weight: gc.Weight,
			})
		}
	}

	if showJSON {
		return printJSON(out)
	}

	fmt.Printf("%s  %s  [%s]\n", out.ID, out.Title, out.Type)
	if len(out.Tags) > 0 {
		fmt.Printf("tags: %s\n", strings.Join(out.Tags, ", "))
	}
	for _, c := range out.Connections {
		fmt.Printf("  -[%s:%d]-> %s\n", c.Type, c.Weight, c.Target)
	}
	if out.Body != "" {
		fmt.Println()
		fmt.Println(out.Body)
	}
	return nil
}
