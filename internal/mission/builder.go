package mission

import "slices"

// Builder assembles plans on the planner side. It performs no sequence
// validation: a plan without Takeoff, or with consecutive Land items, is built as given.
type Builder struct {
	ids    IDGenerator
	nodes  []Node
	params Params
}

// NewBuilder creates a Builder allocating ids from ids
func NewBuilder(ids IDGenerator) *Builder {
	return &Builder{ids: ids}
}

// Add appends items to the plan, allocating a fresh node id for each.
func (b *Builder) Add(items ...Item) *Builder {
	for _, item := range items {
		b.nodes = append(b.nodes, Node{ID: b.ids.NewID(), Item: item})
	}
	return b
}

// WithParams sets the mission-wide kinematic limits
func (b *Builder) WithParams(p Params) *Builder {
	b.params = p
	return b
}

// Len returns the number of nodes added so far
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Build returns a plan with a freshly allocated id. The plan does not share
// its node slice with the builder, so later Add calls do not alter it.
func (b *Builder) Build() Plan {
	nodes := slices.Clone(b.nodes)
	if nodes == nil {
		nodes = []Node{}
	}

	return Plan{
		ID:     b.ids.NewID(),
		Nodes:  nodes,
		Params: b.params,
	}
}
