package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/events"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"github.com/yusufkecer/medfit-backend/internal/report"
	"github.com/yusufkecer/medfit-backend/internal/repository"
	"github.com/yusufkecer/medfit-backend/internal/service"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var profileName, measurements string

	cmd := &cobra.Command{
		Use:     "history <client-id>",
		Short:   "Print a client's assessment timeline with deltas",
		Example: `  medfit history 12 --measurements waist,arm_right,arm_left`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client id %q", args[0])
			}
			names, err := domain.ParseMeasurementNames(measurements)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				names = metrics.DefaultComparison
			}
			profile, err := a.profile(profileName)
			if err != nil {
				return err
			}

			conn, dialect, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			clientRepo := repository.NewClientRepository(conn, dialect)
			assessments := service.NewAssessmentService(clientRepo, repository.NewAssessmentRepository(conn, dialect), events.NopPublisher{}, profile)
			clients := service.NewClientService(clientRepo, assessments)

			ctx := cmd.Context()
			client, err := clients.Get(ctx, clientID)
			if err != nil {
				return err
			}
			steps, err := assessments.History(ctx, clientID, names, profile)
			if err != nil {
				return err
			}
			return report.WriteHistory(cmd.OutOrStdout(), client, steps, names, a.reportOptions())
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "dashboard or clinical (default from RESULT_PROFILE)")
	cmd.Flags().StringVar(&measurements, "measurements", "", "comma separated measurements to compare (default: all circumferences)")
	return cmd
}
