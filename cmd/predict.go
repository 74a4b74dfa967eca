package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flames/compat"
	"flames/ml"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict compatibility for one set of answers",
	RunE:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	defaults := compat.DefaultAnswers()
	flags := predictCmd.Flags()
	flags.String("gender", string(defaults.Gender), "Male or Female")
	flags.String("met", string(defaults.Met), `"Met before" or "Not met"`)
	for _, feature := range compat.Features {
		if feature.Kind == compat.KindSelect {
			continue
		}
		flags.Int(feature.Name, feature.Default.(int), feature.Label)
	}
	flags.Bool("json", false, "print the result as JSON")
}

func answersFromFlags(cmd *cobra.Command) (compat.Answers, error) {
	values := make(url.Values)
	for _, feature := range compat.Features {
		values.Set(feature.Name, cmd.Flags().Lookup(feature.Name).Value.String())
	}
	return compat.ParseForm(values)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Log.Level = "error"
	if debug {
		cfg.Log.Level = "debug"
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	answers, err := answersFromFlags(cmd)
	if err != nil {
		return err
	}
	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		return err
	}
	predictor, err := compat.NewPredictor(model, compat.WithLogger(log))
	if err != nil {
		return err
	}

	result, err := compat.Present(predictor.PredictAnswers(cmd.Context(), answers))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, result.Message)
		if !result.Celebrate {
			fmt.Fprintln(out, compat.ConsolationMessage)
		}
	}
	if result.Error != "" {
		log.Error("prediction failed", zap.String("error", result.Error))
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}
