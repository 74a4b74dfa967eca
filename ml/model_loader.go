package ml

import (
	"encoding/json"
	"os"

	"github.com/juju/errors"
)

// LoadModel reads a classifier artifact. An empty modelType takes the type
// recorded in the artifact. Every failure is an *ArtifactError.
func LoadModel(modelType, path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactError{Path: path, Op: "read", Err: err}
	}
	model, err := decodeModel(modelType, payload)
	if err != nil {
		return nil, &ArtifactError{Path: path, Op: "decode", Err: err}
	}
	return model, nil
}

func decodeModel(modelType string, payload []byte) (Classifier, error) {
	var header artifactHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, errors.Annotate(err, "artifact is not valid JSON")
	}
	if modelType == "" {
		modelType = header.Type
	} else if header.Type != "" && header.Type != modelType {
		return nil, errors.Errorf("artifact holds a %q model, expected %q", header.Type, modelType)
	}

	switch modelType {
	case DecisionTreeType:
		model := &DecisionTree{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, errors.Trace(err)
		}
		return model, nil
	case LogisticRegressionType:
		model := &LogisticRegression{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, errors.Trace(err)
		}
		return model, nil
	case "":
		return nil, errors.New("artifact has no model type")
	default:
		return nil, errors.Errorf("unsupported model type %q", modelType)
	}
}

// SaveModel writes a classifier in the artifact format read by LoadModel.
func SaveModel(model Classifier, path string) error {
	payload, err := json.Marshal(model)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.WriteFile(path, payload, 0o600))
}
