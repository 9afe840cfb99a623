// Package viz exports the reference graph for drawing.
//
// Build collects the linked graph once; DOT encodes it for Graphviz
// (neato layout, one node per entry linking back to the page), and the
// hover data lets a page highlight a node together with its neighbors and
// incident edges. InjectSVG adds that behavior to an SVG Graphviz produced.
package viz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/katalvlaran/cardbook/core"
)

// ErrNotLinked is returned when Build gets a store whose tags were never resolved.
var ErrNotLinked = errors.New("viz: store is not linked")

// GraphName is the DOT graph identifier.
const GraphName = "cardbook"

// Node is one drawable entry.
type Node struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Placeholder bool   `json:"isPlaceholder"`
}

// Export is the visualization view of a linked store.
type Export struct {
	// Nodes in collection order.
	Nodes []Node `json:"nodes"`
	// Edges oriented referenced → referencing, deduplicated.
	Edges []core.Edge `json:"edges"`
	// Neighbors maps each ID to its adjacent IDs (either direction).
	Neighbors map[string][]string `json:"neighbors"`
	// Highlight maps each ID to the DOM ids lit when hovering it:
	// the node, its neighbors and its incident edges.
	Highlight map[string][]string `json:"highlight"`
}

// Build collects the export of s.
//
// Implementation:
//   - Stage 1: Require a linked store.
//   - Stage 2: Nodes and deduplicated edges (core.Store.Edges).
//   - Stage 3: Per node, neighbors and the highlight set: back-references,
//     references, itself, then edges in and out.
func Build(s *core.Store) (*Export, error) {
	// 1) Validate
	if s == nil || !s.Linked() {
		return nil, ErrNotLinked
	}

	// 2) Nodes and edges
	entries := s.Entries()
	x := &Export{
		Nodes:     make([]Node, len(entries)),
		Edges:     s.Edges(),
		Neighbors: make(map[string][]string, len(entries)),
		Highlight: make(map[string][]string, len(entries)),
	}

	// 3) Per-node sets
	for i, e := range entries {
		x.Nodes[i] = Node{ID: e.ID, Title: e.Title, Placeholder: e.Placeholder}

		nb, err := s.Neighbors(e.ID)
		if err != nil {
			return nil, err
		}
		x.Neighbors[e.ID] = nb

		hl := make([]string, 0, 2*len(nb)+1)
		seen := make(map[string]struct{}, cap(hl))
		add := func(id string) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				hl = append(hl, id)
			}
		}
		for _, r := range e.ReferencedBy {
			add(r.ID)
		}
		for _, r := range e.References {
			add(r.ID)
		}
		add(e.ID)
		for _, r := range e.References {
			add(r.ID + core.EdgeSeparator + e.ID)
		}
		for _, r := range e.ReferencedBy {
			add(e.ID + core.EdgeSeparator + r.ID)
		}
		x.Highlight[e.ID] = hl
	}

	return x, nil
}

// Subset returns the export restricted to the given IDs. Edges survive
// when both ends are kept; neighbor and highlight lists drop everything
// that no longer exists. Unknown IDs are ignored.
func (x *Export) Subset(ids []string) *Export {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	out := &Export{
		Neighbors: make(map[string][]string),
		Highlight: make(map[string][]string),
	}
	for _, n := range x.Nodes {
		if keep[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range x.Edges {
		if keep[e.From] && keep[e.To] {
			out.Edges = append(out.Edges, e)
			keep[e.ID] = true
		}
	}
	filter := func(in []string) []string {
		res := make([]string, 0, len(in))
		for _, id := range in {
			if keep[id] {
				res = append(res, id)
			}
		}
		return res
	}
	for _, n := range out.Nodes {
		out.Neighbors[n.ID] = filter(x.Neighbors[n.ID])
		out.Highlight[n.ID] = filter(x.Highlight[n.ID])
	}

	return out
}

// dotNode is a gonum node carrying DOT attributes.
type dotNode struct {
	id    int64
	name  string
	attrs []encoding.Attribute
}

func (n dotNode) ID() int64                        { return n.id }
func (n dotNode) DOTID() string                    { return n.name }
func (n dotNode) Attributes() []encoding.Attribute { return n.attrs }

// dotEdge is a gonum edge named by its Edge.ID.
type dotEdge struct {
	from, to dotNode
	name     string
}

func (e dotEdge) From() graph.Node         { return e.from }
func (e dotEdge) To() graph.Node           { return e.to }
func (e dotEdge) ReversedEdge() graph.Edge { return dotEdge{from: e.to, to: e.from, name: e.name} }
func (e dotEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "id", Value: e.name}}
}

// dotGraph adds the layout attributes to a simple directed graph.
type dotGraph struct {
	*simple.DirectedGraph
}

func (dotGraph) DOTAttributers() (g, n, e encoding.Attributer) {
	return attrs{
		{Key: "layout", Value: "neato"},
		{Key: "rankdir", Value: "LR"},
		{Key: "overlap", Value: "false"},
		{Key: "splines", Value: "true"},
		{Key: "epsilon", Value: ".0000001"},
	}, nil, nil
}

type attrs []encoding.Attribute

func (a attrs) Attributes() []encoding.Attribute { return a }

// DOT encodes the graph. Each node links to root#id in a new tab; each
// edge carries its Edge.ID as DOM id. Self-references are omitted: the
// simple graph cannot hold them.
func (x *Export) DOT(root string) ([]byte, error) {
	g := dotGraph{simple.NewDirectedGraph()}
	byID := make(map[string]dotNode, len(x.Nodes))
	for i, n := range x.Nodes {
		dn := dotNode{id: int64(i), name: n.ID, attrs: []encoding.Attribute{
			{Key: "label", Value: n.Title},
			{Key: "href", Value: root + "#" + n.ID},
			{Key: "target", Value: "_blank"},
			{Key: "id", Value: n.ID},
		}}
		g.AddNode(dn)
		byID[n.ID] = dn
	}
	for _, e := range x.Edges {
		if e.From == e.To {
			continue
		}
		g.SetEdge(dotEdge{from: byID[e.From], to: byID[e.To], name: e.ID})
	}

	out, err := dot.Marshal(g, GraphName, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("viz: dot: %w", err)
	}

	return append(out, '\n'), nil
}

// WriteHover writes the highlight map as JSON.
func (x *Export) WriteHover(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(x.Highlight)
}

const hoverJS = `
function setup(id, others) {
    let node = document.getElementById(id);
    node.onmouseover = function() {
        for (let other of others)
            document.getElementById(other).classList.add("hovered");
    };
    node.onmouseout = function() {
        for (let other of others)
            document.getElementById(other).classList.remove("hovered");
    };
}
`

const hoverCSS = `
.hovered.node ellipse { fill: beige; }
.hovered.edge path { stroke: red; }
.hovered.edge polygon { stroke: red; fill: red; }
`

// Script returns the <script> and <style> elements that wire hovering.
// Nodes are set up in collection order. The script body is a CDATA section,
// so IDs containing '<' or '&' keep the SVG well-formed.
func (x *Export) Script() string {
	var js strings.Builder
	js.WriteString(hoverJS)
	for _, n := range x.Nodes {
		quoted := make([]string, len(x.Highlight[n.ID]))
		for i, id := range x.Highlight[n.ID] {
			quoted[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&js, "setup(%s, [%s]);\n", strconv.Quote(n.ID), strings.Join(quoted, ","))
	}

	var sb strings.Builder
	sb.WriteString(`<script type="text/javascript"><![CDATA[`)
	sb.WriteString(cdata(js.String()))
	sb.WriteString("]]></script>\n<style>")
	sb.WriteString(hoverCSS)
	sb.WriteString("</style>\n")

	return sb.String()
}

// cdata splits every "]]>" in s so it cannot close the enclosing section.
func cdata(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

// InjectSVG inserts Script before the closing </svg> tag of svg.
// An SVG without one gets the script appended.
func InjectSVG(svg []byte, x *Export) []byte {
	script := []byte(x.Script())
	at := bytes.LastIndex(svg, []byte("</svg>"))
	if at < 0 {
		return append(append([]byte(nil), svg...), script...)
	}
	out := make([]byte, 0, len(svg)+len(script))
	out = append(out, svg[:at]...)
	out = append(out, script...)

	return append(out, svg[at:]...)
}
