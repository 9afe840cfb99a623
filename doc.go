// Command cardbook compiles a YAML collection of cross-referenced study
// cards into a single HTML page, a JSON dump and a Graphviz reference graph.
//
// What
//
//   - Cards tag the cards they build on; every card is rendered after all
//     of its tags (a topological order that keeps authored order where it can).
//   - A "_colloq" table of numbered prompts becomes colloquium questions,
//     each listing the cards whose colloq numbers round to it.
//   - Superscript and subscript glyphs in card text are rewritten as
//     ^{..} and _{..} groups, and inline math spans not written in the
//     GitLab "$`...`$" form are reported.
//
// Layout
//
//	core/      entries, the store and tag resolution
//	dfs/       depth-first search, topological sort, cycle listing
//	bfs/       breadth-first neighborhoods (graph --focus, deps)
//	colloq/    colloquium keys, questions and numbering gaps
//	textnorm/  text cleanup and math checks
//	diag/      diagnostics, zap and GitHub annotations output
//	source/    YAML loading and record validation
//	compile/   the pipeline: link, order, questions, nodes
//	render/    HTML page and JSON
//	viz/       DOT export and SVG hover highlighting
//	config/    cardbook.yaml, CARDBOOK_* environment
//	cmd/       build, check, graph, deps, version
//
// Usage
//
//	cardbook build -i cards.yml -o public/index.html --graph public/graph.dot
//	cardbook build --watch
//	cardbook check --strict --format github
//	cardbook graph --focus group --direction prerequisites
//	cardbook deps field --skip-wip
package main
