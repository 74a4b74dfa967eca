package ml

// Classifier is a pre-trained binary classifier. Predict takes a batch of rows
// (shape n × NumFeatures) and returns one label per row, each 0 or 1.
// Implementations are immutable after loading and safe for concurrent use.
type Classifier interface {
	Predict(rows [][]float64) ([]int, error)
	NumFeatures() int
	Type() string
}

const (
	DecisionTreeType       = "decision_tree"
	LogisticRegressionType = "logistic_regression"
)

// artifactHeader is the part of every artifact used to pick a decoder.
type artifactHeader struct {
	Type       string `json:"type"`
	NumFeature int    `json:"n_features"`
}

func checkRow(row []float64, want int) error {
	if want > 0 && len(row) != want {
		return &ShapeError{Got: len(row), Want: want}
	}
	return nil
}
