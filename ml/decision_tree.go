package ml

import (
	"encoding/json"
	"fmt"

	"github.com/juju/errors"
)

// DecisionTree is a binary decision tree stored as a flat node array. Node 0 is
// the root; a row goes left when row[FeatureIdx] <= Threshold.
type DecisionTree struct {
	nodes     []TreeNode
	nFeatures int
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

type decisionTreeArtifact struct {
	artifactHeader
	Nodes []TreeNode `json:"nodes"`
}

// NewDecisionTree builds a tree from already-trained nodes.
func NewDecisionTree(nFeatures int, nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{nodes: nodes, nFeatures: nFeatures}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Type() string     { return DecisionTreeType }
func (dt *DecisionTree) NumFeatures() int { return dt.nFeatures }

func (dt *DecisionTree) Predict(rows [][]float64) ([]int, error) {
	labels := make([]int, len(rows))
	for i, row := range rows {
		label, err := dt.predictRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

func (dt *DecisionTree) predictRow(features []float64) (int, error) {
	if len(dt.nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	if err := checkRow(features, dt.nFeatures); err != nil {
		return 0, err
	}
	idx := 0
	// A well-formed tree reaches a leaf in at most len(nodes) steps.
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(decisionTreeArtifact{
		artifactHeader: artifactHeader{Type: DecisionTreeType, NumFeature: dt.nFeatures},
		Nodes:          dt.nodes,
	})
}

func (dt *DecisionTree) UnmarshalJSON(payload []byte) error {
	var artifact decisionTreeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	dt.nodes = artifact.Nodes
	dt.nFeatures = artifact.NumFeature
	return dt.validate()
}

func (dt *DecisionTree) validate() error {
	if len(dt.nodes) == 0 {
		return errors.New("decision tree has no nodes")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if node.ClassLabel != 0 && node.ClassLabel != 1 {
				return errors.Errorf("node %d: class label %d is not binary", i, node.ClassLabel)
			}
			continue
		}
		if node.LeftChild <= 0 || node.LeftChild >= len(dt.nodes) ||
			node.RightChild <= 0 || node.RightChild >= len(dt.nodes) {
			return errors.Errorf("node %d: child index out of range", i)
		}
		if dt.nFeatures > 0 && node.FeatureIdx >= dt.nFeatures {
			return errors.Errorf("node %d: feature index %d exceeds %d features", i, node.FeatureIdx, dt.nFeatures)
		}
	}
	return nil
}
