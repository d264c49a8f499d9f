// Package forest evaluates random-forest classifiers exported as JSON.
//
// A forest is a list of binary decision trees in the layout scikit-learn
// uses internally: nodes are stored in a flat array, node 0 is the root,
// a sample goes left when x[feature] <= threshold, and leaves have both
// children set to -1. Each node carries the class weights of the training
// samples that reached it; they are normalised to probabilities on load.
package forest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Leaf marks a missing child.
const Leaf = -1

// Node is one split or leaf of a tree
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"` // class weights, probabilities after load
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return n.Left == Leaf && n.Right == Leaf
}

// Tree is a single decision tree
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is a random-forest classifier
type Forest struct {
	Features []string `json:"features"`
	Classes  int      `json:"n_classes"`
	Trees    []Tree   `json:"trees"`
}

// Load reads a forest from a JSON file.
func Load(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("forest: open: %w", err)
	}
	defer f.Close()

	forest, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("forest: %s: %w", path, err)
	}
	return forest, nil
}

// Decode reads a forest from JSON, validates it and normalises the node values.
func Decode(r io.Reader) (*Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := f.init(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Forest) init() error {
	if len(f.Features) == 0 {
		return fmt.Errorf("no features")
	}
	if f.Classes < 2 {
		return fmt.Errorf("n_classes must be at least 2, got %d", f.Classes)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("no trees")
	}

	for t := range f.Trees {
		nodes := f.Trees[t].Nodes
		if len(nodes) == 0 {
			return fmt.Errorf("tree %d: no nodes", t)
		}
		for i := range nodes {
			n := &nodes[i]
			if len(n.Value) != f.Classes {
				return fmt.Errorf("tree %d node %d: %d class values, want %d", t, i, len(n.Value), f.Classes)
			}
			if !n.IsLeaf() {
				if n.Feature < 0 || n.Feature >= len(f.Features) {
					return fmt.Errorf("tree %d node %d: feature index %d out of range", t, i, n.Feature)
				}
				// children always follow their parent, which also rules out cycles
				if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
					return fmt.Errorf("tree %d node %d: invalid children %d/%d", t, i, n.Left, n.Right)
				}
			}

			var sum float64
			for _, v := range n.Value {
				if v < 0 {
					return fmt.Errorf("tree %d node %d: negative class weight", t, i)
				}
				sum += v
			}
			if sum <= 0 {
				return fmt.Errorf("tree %d node %d: empty class weights", t, i)
			}
			for c := range n.Value {
				n.Value[c] /= sum
			}
		}
	}
	return nil
}

func (f *Forest) checkInput(x []float64) error {
	if len(x) != len(f.Features) {
		return fmt.Errorf("forest: got %d features, want %d", len(x), len(f.Features))
	}
	return nil
}

// path walks a tree and returns the path of node indices from root to leaf.
func (t Tree) path(x []float64) []int {
	path := []int{0}
	i := 0
	for !t.Nodes[i].IsLeaf() {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
		path = append(path, i)
	}
	return path
}

// PredictProba returns the class probabilities for x, averaged over all trees.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if err := f.checkInput(x); err != nil {
		return nil, err
	}

	proba := make([]float64, f.Classes)
	for _, t := range f.Trees {
		path := t.path(x)
		leaf := t.Nodes[path[len(path)-1]]
		for c, v := range leaf.Value {
			proba[c] += v
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba, nil
}
