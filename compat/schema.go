package compat

type Kind string

const (
	KindSelect Kind = "select"
	KindNumber Kind = "number"
	KindSlider Kind = "slider"
)

const (
	SliderMin     = 0
	SliderMax     = 10
	SliderDefault = 5
)

// Feature describes one form control and its position in the vector.
type Feature struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Min     int      `json:"min"`
	Max     int      `json:"max,omitempty"`
	Default any      `json:"default"`
	Choices []string `json:"choices,omitempty"`
}

// Features lists the controls in vector order.
var Features = []Feature{
	{Index: 0, Name: "gender", Label: "Select your gender:", Kind: KindSelect, Max: 1, Default: string(Male), Choices: []string{string(Male), string(Female)}},
	{Index: 1, Name: "age", Label: "Enter your age:", Kind: KindNumber, Default: 0},
	slider(2, "attraction", "How attracted are you to the person?"),
	slider(3, "sincerity", "How sincere is the person?"),
	slider(4, "intelligence", "How intelligent is the person?"),
	slider(5, "funny", "How funny is the person?"),
	slider(6, "ambition", "How ambitious is the person?"),
	slider(7, "interests", "How many shared interests do you have?"),
	slider(8, "overall", "What overall score would you give the person?"),
	slider(9, "reciprocate", "Do you think the person will reciprocate your emotions?"),
	{Index: 10, Name: "met", Label: "Have you met before?", Kind: KindSelect, Max: 1, Default: string(MetBefore), Choices: []string{string(MetBefore), string(NotMet)}},
}

func slider(index int, name, label string) Feature {
	return Feature{Index: index, Name: name, Label: label, Kind: KindSlider, Min: SliderMin, Max: SliderMax, Default: SliderDefault}
}

// FeatureNames returns the feature names in vector order.
func FeatureNames() []string {
	names := make([]string, len(Features))
	for i, feature := range Features {
		names[i] = feature.Name
	}
	return names
}
