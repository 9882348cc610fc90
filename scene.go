package voxscene

import (
	"sort"
)

// VoxNode is one resolved scene-graph node. Exactly one of Child, Children
// or Models is populated, depending on Kind.
type VoxNode struct {
	ID      int32
	Kind    VoxNodeKind
	Name    string
	Hidden  bool
	LayerID int32

	// Transform nodes: keyframes (frame 0 drives LocalTransform) and the
	// single child node.
	Frames []TransformFrame
	Child  *VoxNode

	// Group nodes: ordered children.
	Children []*VoxNode

	// Shape nodes: referenced models, one per animation frame.
	Models []ShapeModel
}

// SceneGraph is the resolved node tree plus layer metadata.
type SceneGraph struct {
	Roots  []*VoxNode
	Nodes  map[int32]*VoxNode
	Layers map[int32]LayerInfo
}

// buildSceneGraph resolves the flat record list into a tree. The file issues
// node IDs in a stream and forward references are legal, so resolution is a
// lookup pass after all records are registered, not inline.
func buildSceneGraph(f *VoxFile) (*SceneGraph, error) {
	g := &SceneGraph{
		Nodes:  make(map[int32]*VoxNode, len(f.nodes)),
		Layers: make(map[int32]LayerInfo, len(f.Layers)),
	}
	for _, l := range f.Layers {
		g.Layers[l.ID] = l
	}

	for _, rec := range f.nodes {
		if _, ok := g.Nodes[rec.id]; ok {
			return nil, parseErrorf(0, "node id %d declared twice", rec.id)
		}
		g.Nodes[rec.id] = &VoxNode{
			ID:      rec.id,
			Kind:    rec.kind,
			Name:    rec.name,
			Hidden:  rec.hidden,
			LayerID: rec.layerID,
			Frames:  rec.frames,
			Models:  rec.models,
		}
	}

	referenced := make(map[int32]bool, len(f.nodes))
	for _, rec := range f.nodes {
		node := g.Nodes[rec.id]
		switch rec.kind {
		case VoxNodeTransform:
			child, ok := g.Nodes[rec.childID]
			if !ok {
				return nil, &DanglingReferenceError{Kind: "node", From: rec.id, ID: rec.childID}
			}
			node.Child = child
			referenced[rec.childID] = true
		case VoxNodeGroup:
			node.Children = make([]*VoxNode, 0, len(rec.children))
			for _, id := range rec.children {
				child, ok := g.Nodes[id]
				if !ok {
					return nil, &DanglingReferenceError{Kind: "node", From: rec.id, ID: id}
				}
				node.Children = append(node.Children, child)
				referenced[id] = true
			}
		case VoxNodeShape:
			for _, m := range rec.models {
				if m.ModelID < 0 || int(m.ModelID) >= len(f.Models) {
					return nil, &DanglingReferenceError{Kind: "model", From: rec.id, ID: m.ModelID}
				}
			}
		}
	}

	// Roots are the nodes nothing references; node 0 in conformant files.
	for _, rec := range f.nodes {
		if !referenced[rec.id] {
			g.Roots = append(g.Roots, g.Nodes[rec.id])
		}
	}
	sort.Slice(g.Roots, func(i, j int) bool { return g.Roots[i].ID < g.Roots[j].ID })
	return g, nil
}

// Walk calls fn for node and every descendant, depth first in file order.
func (n *VoxNode) Walk(fn func(*VoxNode)) {
	fn(n)
	if n.Child != nil {
		n.Child.Walk(fn)
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindByName returns the first descendant (including n itself) with the
// given node name, or nil. Named nodes come from the MagicaVoxel outline.
func (n *VoxNode) FindByName(name string) *VoxNode {
	var found *VoxNode
	n.Walk(func(v *VoxNode) {
		if found == nil && v.Name == name {
			found = v
		}
	})
	return found
}

// ModelIDs returns the distinct model IDs referenced by shape nodes under n,
// in first-reference order.
func (n *VoxNode) ModelIDs() []int32 {
	seen := map[int32]bool{}
	var ids []int32
	n.Walk(func(v *VoxNode) {
		for _, m := range v.Models {
			if !seen[m.ModelID] {
				seen[m.ModelID] = true
				ids = append(ids, m.ModelID)
			}
		}
	})
	return ids
}
