package vestigectl

import (
	"context"

	"github.com/spf13/cobra"
	gogrpc "google.golang.org/grpc"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
)

func (s *session) poolCommand() *cobra.Command {
	return launchAction(s, "pool", "Print a launch pool", (*launchv1.LaunchClient).GetPool)
}

func (s *session) participantCommand() *cobra.Command {
	return userAction(s, "participant", "Print a user's participant record", (*launchv1.LaunchClient).GetParticipant)
}

func (s *session) custodyCommand() *cobra.Command {
	return userAction(s, "custody", "Print a user's custody record", (*launchv1.LaunchClient).GetCustody)
}

func (s *session) balanceCommand() *cobra.Command {
	var asset string
	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Print an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			assetKey, err := parseKey(asset)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.GetBalance(ctx, &launchv1.BalanceRequest{Account: account, Asset: assetKey})
			})
		},
	}
	cmd.Flags().StringVar(&asset, "asset", "native", "Asset key")
	return cmd
}

func (s *session) eventsCommand() *cobra.Command {
	var (
		after uint64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "events <launch>",
		Short: "Page the public journal of a launch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.ListEvents(ctx, &launchv1.ListEventsRequest{Launch: launchKey, AfterSeq: after, Limit: limit})
			})
		},
	}
	cmd.Flags().Uint64Var(&after, "after", 0, "Return events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (server default when 0)")
	return cmd
}

func (s *session) executorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executor",
		Short: "Inspect the private executor",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Print executor counters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return s.call(cmd, func(ctx context.Context, conn *gogrpc.ClientConn) (any, error) {
					return launchv1.NewExecutorClient(conn).GetStats(ctx, &launchv1.Empty{})
				})
			},
		},
		&cobra.Command{
			Use:   "record <key>",
			Short: "Read a delegated record as the acting wallet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := keyArg(args, 0)
				if err != nil {
					return err
				}
				return s.call(cmd, func(ctx context.Context, conn *gogrpc.ClientConn) (any, error) {
					return launchv1.NewExecutorClient(conn).GetPrivateRecord(ctx, &launchv1.PrivateRecordRequest{Record: key})
				})
			},
		},
	)
	return cmd
}
