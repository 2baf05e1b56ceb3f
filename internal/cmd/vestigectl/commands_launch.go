package vestigectl

import (
	"context"

	"github.com/spf13/cobra"
	gogrpc "google.golang.org/grpc"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
)

func (s *session) launchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Create and drive a launch (creator operations)",
	}

	var file string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Open a launch from a YAML definition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := LoadDefinition(file)
			if err != nil {
				return err
			}
			req, err := def.Request()
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.InitializeLaunch(ctx, req)
			})
		},
	}
	initCmd.Flags().StringVarP(&file, "file", "f", "", "Launch definition file (required)")
	_ = initCmd.MarkFlagRequired("file")

	var creator, asset string
	addressesCmd := &cobra.Command{
		Use:   "addresses",
		Short: "Print the derived addresses of a launch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creatorKey, err := parseKey(creator)
			if err != nil {
				return err
			}
			assetKey, err := parseKey(asset)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.GetAddresses(ctx, &launchv1.LaunchKeyRequest{Creator: creatorKey, Asset: assetKey})
			})
		},
	}
	addressesCmd.Flags().StringVar(&creator, "creator", "", "Creator wallet (required)")
	addressesCmd.Flags().StringVar(&asset, "asset", "native", "Commitment asset")
	_ = addressesCmd.MarkFlagRequired("creator")

	var executor string
	delegateCmd := &cobra.Command{
		Use:   "delegate <launch>",
		Short: "Hand the launch pool to the private executor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.DelegatePool(ctx, &launchv1.DelegateRequest{Launch: launchKey, Executor: executor})
			})
		},
	}
	delegateCmd.Flags().StringVar(&executor, "executor", "", "Executor identity the delegation is pinned to")

	var amount uint64
	depositCmd := &cobra.Command{
		Use:   "deposit <launch>",
		Short: "Top up the launch vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.Deposit(ctx, &launchv1.AmountRequest{Launch: launchKey, Amount: amount})
			})
		},
	}
	depositCmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to deposit")

	cmd.AddCommand(
		initCmd,
		addressesCmd,
		delegateCmd,
		depositCmd,
		launchAction(s, "show", "Print a launch and its phase", (*launchv1.LaunchClient).GetLaunch),
		launchAction(s, "mark-delegated", "Flag the launch as running on the private executor", (*launchv1.LaunchClient).MarkDelegated),
		launchAction(s, "graduate", "Graduate a public launch", (*launchv1.LaunchClient).Graduate),
		launchAction(s, "graduate-undelegate", "Graduate on the executor and hand the pool back", (*launchv1.LaunchClient).GraduateAndUndelegate),
		launchAction(s, "finalize", "Record graduation of a delegated launch", (*launchv1.LaunchClient).FinalizeGraduation),
	)
	return cmd
}

// launchAction builds a command that takes one launch argument and sends
// a LaunchRequest to method.
func launchAction[Resp any](s *session, use, short string, method func(*launchv1.LaunchClient, context.Context, *launchv1.LaunchRequest, ...gogrpc.CallOption) (*Resp, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <launch>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return method(c, ctx, &launchv1.LaunchRequest{Launch: launchKey})
			})
		},
	}
}
