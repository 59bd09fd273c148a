package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/report"
)

func (a *app) newCalcCmd() *cobra.Command {
	var (
		weight, height, waist, hip float64
		sex, profileName           string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute BMI and waist-hip ratio",
		Example: `  medfit calc --weight 70 --height 175
  medfit calc --weight 70 --height 1.75 --waist 87 --hip 100 --sex M --profile dashboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !domain.IsPresent(weight) || !domain.IsPresent(height) {
				return fmt.Errorf("%w: --weight and --height must be positive", domain.ErrInvalidMeasurement)
			}
			profile, err := a.profile(profileName)
			if err != nil {
				return err
			}

			result := profile.Evaluate(domain.Measurements{
				domain.Weight: weight,
				domain.Height: height,
				domain.Waist:  waist,
				domain.Hip:    hip,
			}, domain.ParseSex(sex))
			return report.WriteResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&height, "height", 0, "height in m or cm")
	cmd.Flags().Float64Var(&waist, "waist", 0, "waist circumference in cm")
	cmd.Flags().Float64Var(&hip, "hip", 0, "hip circumference in cm")
	cmd.Flags().StringVar(&sex, "sex", "", "M or F")
	cmd.Flags().StringVar(&profileName, "profile", "", "dashboard or clinical (default from RESULT_PROFILE)")
	return cmd
}
