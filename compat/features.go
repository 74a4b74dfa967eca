package compat

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NumFeatures is the width of the vector the classifier was trained on.
const NumFeatures = 11

// FeatureVector holds the answers in training order:
// gender, age, attraction, sincerity, intelligence, funny, ambition,
// interests, overall, reciprocate, met.
type FeatureVector [NumFeatures]float64

// Row returns the vector as a single model input row.
func (v FeatureVector) Row() []float64 {
	return append([]float64(nil), v[:]...)
}

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

func (g Gender) Code() float64 {
	if g == Male {
		return 1
	}
	return 0
}

type Met string

const (
	MetBefore Met = "Met before"
	NotMet    Met = "Not met"
)

func (m Met) Code() float64 {
	if m == MetBefore {
		return 1
	}
	return 0
}

// Answers is one filled-in form.
type Answers struct {
	Gender       Gender `json:"gender" validate:"oneof=Male Female"`
	Met          Met    `json:"met" validate:"oneof='Met before' 'Not met'"`
	Age          int    `json:"age" validate:"gte=0"`
	Attraction   int    `json:"attraction" validate:"gte=0,lte=10"`
	Sincerity    int    `json:"sincerity" validate:"gte=0,lte=10"`
	Intelligence int    `json:"intelligence" validate:"gte=0,lte=10"`
	Funny        int    `json:"funny" validate:"gte=0,lte=10"`
	Ambition     int    `json:"ambition" validate:"gte=0,lte=10"`
	Interests    int    `json:"interests" validate:"gte=0,lte=10"`
	Overall      int    `json:"overall" validate:"gte=0,lte=10"`
	Reciprocate  int    `json:"reciprocate" validate:"gte=0,lte=10"`
}

// DefaultAnswers is the state of an untouched form.
func DefaultAnswers() Answers {
	return Answers{
		Gender:       Male,
		Met:          MetBefore,
		Age:          0,
		Attraction:   SliderDefault,
		Sincerity:    SliderDefault,
		Intelligence: SliderDefault,
		Funny:        SliderDefault,
		Ambition:     SliderDefault,
		Interests:    SliderDefault,
		Overall:      SliderDefault,
		Reciprocate:  SliderDefault,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
}

// Validate checks every answer against the range of its control.
func (a Answers) Validate() error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	inputErr := &InputError{Fields: make(map[string]string, len(validationErrors))}
	for _, fieldErr := range validationErrors {
		inputErr.Fields[fieldErr.Field()] = describe(fieldErr)
	}
	return inputErr
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fieldErr.Param(), "'", ""))
	case "gte":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed %s", fieldErr.Tag())
	}
}

// Vector encodes the answers. The order is fixed and must not change without
// retraining the model.
func (a Answers) Vector() FeatureVector {
	return FeatureVector{
		a.Gender.Code(),
		float64(a.Age),
		float64(a.Attraction),
		float64(a.Sincerity),
		float64(a.Intelligence),
		float64(a.Funny),
		float64(a.Ambition),
		float64(a.Interests),
		float64(a.Overall),
		float64(a.Reciprocate),
		a.Met.Code(),
	}
}

// ParseForm reads answers from submitted form values. Absent fields keep their
// defaults.
func ParseForm(values url.Values) (Answers, error) {
	answers := DefaultAnswers()
	inputErr := &InputError{Fields: map[string]string{}}

	if v := values.Get("gender"); v != "" {
		answers.Gender = Gender(v)
	}
	if v := values.Get("met"); v != "" {
		answers.Met = Met(v)
	}
	for _, feature := range Features {
		if feature.Kind == KindSelect {
			continue
		}
		raw := strings.TrimSpace(values.Get(feature.Name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			inputErr.Fields[feature.Name] = "must be a whole number"
			continue
		}
		*answers.field(feature.Name) = n
	}
	if len(inputErr.Fields) > 0 {
		return answers, inputErr
	}
	return answers, answers.Validate()
}

func (a *Answers) field(name string) *int {
	switch name {
	case "age":
		return &a.Age
	case "attraction":
		return &a.Attraction
	case "sincerity":
		return &a.Sincerity
	case "intelligence":
		return &a.Intelligence
	case "funny":
		return &a.Funny
	case "ambition":
		return &a.Ambition
	case "interests":
		return &a.Interests
	case "overall":
		return &a.Overall
	case "reciprocate":
		return &a.Reciprocate
	}
	panic("compat: unknown numeric field " + name)
}

// Values encodes the answers as form values; ParseForm(a.Values()) == a.
func (a Answers) Values() url.Values {
	values := url.Values{}
	values.Set("gender", string(a.Gender))
	values.Set("met", string(a.Met))
	for _, feature := range Features {
		if feature.Kind == KindSelect {
			continue
		}
		values.Set(feature.Name, strconv.Itoa(*a.field(feature.Name)))
	}
	return values
}
