package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Alias1177/HeartGuard/internal/assess"
	"github.com/Alias1177/HeartGuard/internal/recommend"
	"github.com/Alias1177/HeartGuard/internal/registry"
	"github.com/Alias1177/HeartGuard/internal/voting"
	"github.com/Alias1177/HeartGuard/models"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Show which classifiers, scaler and feature names load",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := modelsDir(cmd)
			if err != nil {
				return err
			}
			reg, err := registry.Load(dir, registry.Options{})
			if err != nil {
				return err
			}

			rep := reg.Report()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Models directory: %s\n", rep.Dir)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tSTATUS")
			for _, id := range models.AllModels {
				status := "missing"
				if msg, ok := rep.Failed[string(id)]; ok {
					status = "failed: " + msg
				} else if slices.Contains(rep.Loaded, id) {
					status = "loaded"
				}
				fmt.Fprintf(w, "%s\t%s\n", id, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Scaler: %s\n", loadedLabel(rep.ScalerLoaded))
			fmt.Fprintf(out, "Feature names: %s\n", loadedLabel(rep.FeatureNames != nil))
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored assessments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := db.ListRecent(cmd.Context(), assess.ClampLimit(limit))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No predictions stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tAGE\tSEX\tRISK\tLEVEL")
			for _, r := range records {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.1f%%\t%s\n",
					r.ID, models.FormatTimestamp(r.CreatedAt), *r.Age, *r.Sex, r.RiskPercentage, r.RiskLevel)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", assess.DefaultHistoryLimit, "Maximum number of records (1-100)")
	return cmd
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear history without --yes")
			}
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d predictions\n", n)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm deletion")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Aggregate a set of votes into a risk level",
		Example: `  heartctl classify --votes knn=1,svm=0,mlp=1
  heartctl classify --votes 1,1,0,0,0,0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("votes")
			votes, err := parseVotes(raw)
			if err != nil {
				return err
			}
			res, err := voting.Classify(votes)
			if err != nil {
				return err
			}
			printVerdict(cmd, res.Percentage, res.Level)
			return nil
		},
	}
	cmd.Flags().String("votes", "", "Comma separated votes, either model=vote or positional in canonical model order")
	_ = cmd.MarkFlagRequired("votes")
	return cmd
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run the ensemble on a patient JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd)
			if err != nil {
				return err
			}

			dir, err := modelsDir(cmd)
			if err != nil {
				return err
			}
			reg, err := registry.Load(dir, registry.Options{})
			if err != nil {
				return err
			}

			// no store: a dry run leaves the history untouched
			svc := assess.New(reg, nil, nil)
			res, err := svc.Assess(cmd.Context(), input)
			if err != nil {
				return err
			}
			svc.Wait()

			out := cmd.OutOrStdout()
			for _, id := range models.AllModels {
				if v, ok := res.Assessment.Votes[id]; ok {
					fmt.Fprintf(out, "%-20s %d\n", id, v)
				}
			}
			printVerdict(cmd, res.Assessment.RiskPercentage, res.Assessment.RiskLevel)
			if res.Degradation.Any() {
				fmt.Fprintln(out, "Warning: ran in degraded mode (see `heartctl models`)")
			}
			return nil
		},
	}
	cmd.Flags().String("input", "", "Path to a JSON file with the 13 clinical fields")
	cmd.Flags().String("values", "", "The 13 clinical values, comma separated in canonical field order")
	cmd.MarkFlagsOneRequired("input", "values")
	cmd.MarkFlagsMutuallyExclusive("input", "values")
	return cmd
}

func readInput(cmd *cobra.Command) (*models.ClinicalInput, error) {
	if raw, _ := cmd.Flags().GetString("values"); raw != "" {
		return parseValues(raw)
	}

	path, _ := cmd.Flags().GetString("input")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var input models.ClinicalInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &input, nil
}

// parseValues reads "63,1,3,145,233,1,0,150,0,2.3,0,0,1"
func parseValues(raw string) (*models.ClinicalInput, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != len(models.FeatureNames) {
		return nil, fmt.Errorf("expected %d values, got %d", len(models.FeatureNames), len(parts))
	}
	var v [13]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.FeatureNames[i], err)
		}
		v[i] = x
	}
	input := models.NewClinicalInput(v)
	return &input, nil
}

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Print the precautions and diet plan for a risk level",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("level")
			levels := recommend.Levels()
			if level != "" {
				levels = []models.RiskLevel{recommend.Resolve(level)}
			}

			out := cmd.OutOrStdout()
			for i, l := range levels {
				if i > 0 {
					fmt.Fprintln(out)
				}
				b := recommend.BundleFor(string(l))
				fmt.Fprintf(out, "%s\n", b.Precautions.Title)
				for _, p := range b.Precautions.Precautions {
					fmt.Fprintf(out, "  %s\n", p)
				}
				fmt.Fprintf(out, "%s\n", b.DietPlan.Title)
				for _, f := range b.DietPlan.FoodsToEat {
					fmt.Fprintf(out, "  %s\n", f)
				}
				for _, f := range b.DietPlan.FoodsToAvoid {
					fmt.Fprintf(out, "  %s\n", f)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("level", "", "LOW_RISK, MODERATE_RISK or HIGH_RISK; all levels when empty")
	return cmd
}

func printVerdict(cmd *cobra.Command, pct float64, level models.RiskLevel) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, voting.Message(pct))
	fmt.Fprintf(out, "Level: %s\n", level)
	fmt.Fprintf(out, "Diagnosis: %s\n", voting.Diagnosis(pct))
}

// parseVotes accepts "knn=1,svm=0" or positional "1,0,1"
func parseVotes(raw string) (models.ModelVote, error) {
	votes := make(models.ModelVote)
	parts := strings.Split(raw, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var id models.ModelID
		value := part
		if name, v, ok := strings.Cut(part, "="); ok {
			parsed, err := models.ParseModelID(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			id, value = parsed, strings.TrimSpace(v)
		} else {
			if i >= len(models.AllModels) {
				return nil, fmt.Errorf("too many positional votes: at most %d", len(models.AllModels))
			}
			id = models.AllModels[i]
		}

		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("vote for %s: %w", id, err)
		}
		if _, dup := votes[id]; dup {
			return nil, fmt.Errorf("duplicate vote for %s", id)
		}
		votes[id] = n
	}
	if len(votes) == 0 {
		return nil, voting.ErrNoVotes
	}
	return votes, nil
}

func loadedLabel(ok bool) string {
	if ok {
		return "loaded"
	}
	return "missing (fallback in use)"
}
