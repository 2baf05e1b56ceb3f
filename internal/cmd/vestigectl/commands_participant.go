package vestigectl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	gogrpc "google.golang.org/grpc"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// Commit venues.
const (
	venuePublic  = "public"
	venuePrivate = "private"
	venueRecord  = "record"
)

func (s *session) faucetCommand() *cobra.Command {
	var amount uint64
	cmd := &cobra.Command{
		Use:   "faucet <wallet>",
		Short: "Mint native funds to a wallet (development servers only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.Faucet(ctx, &launchv1.FaucetRequest{Wallet: wallet, Amount: amount})
			})
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to mint")
	return cmd
}

func (s *session) commitCommand() *cobra.Command {
	var (
		amount uint64
		venue  string
	)
	cmd := &cobra.Command{
		Use:   "commit <launch>",
		Short: "Commit funds to a launch",
		Long: "Commit funds to a launch. The public venue transfers from the acting wallet;\n" +
			"private spends from the wallet's custody on the executor; record books an\n" +
			"amount against the executor-held pool without moving funds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			req := &launchv1.AmountRequest{Launch: launchKey, Amount: amount}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				switch venue {
				case venuePublic:
					return c.Commit(ctx, req)
				case venuePrivate:
					return c.PrivateCommit(ctx, req)
				case venueRecord:
					return c.RecordCommit(ctx, req)
				default:
					return nil, fmt.Errorf("unknown venue %q (want %s, %s or %s)", venue, venuePublic, venuePrivate, venueRecord)
				}
			})
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to commit")
	cmd.Flags().StringVar(&venue, "venue", venuePublic, "Where the commitment executes: public, private or record")
	return cmd
}

func (s *session) fundCommand() *cobra.Command {
	var amount uint64
	cmd := &cobra.Command{
		Use:   "fund <launch>",
		Short: "Move funds from the acting wallet into its ephemeral custody",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.FundCustody(ctx, &launchv1.AmountRequest{Launch: launchKey, Amount: amount})
			})
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to fund")
	return cmd
}

func (s *session) joinCommand() *cobra.Command {
	var executor string
	cmd := &cobra.Command{
		Use:   "join <launch>",
		Short: "Delegate the acting wallet's participant and custody records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.DelegateParticipant(ctx, &launchv1.DelegateRequest{Launch: launchKey, Executor: executor})
			})
		},
	}
	cmd.Flags().StringVar(&executor, "executor", "", "Executor identity the delegation is pinned to")
	return cmd
}

func (s *session) undelegateCommand() *cobra.Command {
	var recordKey string
	cmd := &cobra.Command{
		Use:   "undelegate <launch>",
		Short: "Take a participant or custody record back from the executor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			key, err := parseKey(recordKey)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return c.Undelegate(ctx, &launchv1.UndelegateRequest{Launch: launchKey, Record: key})
			})
		},
	}
	cmd.Flags().StringVar(&recordKey, "record", "", "Record key (required)")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func (s *session) sweepCommand() *cobra.Command {
	return userAction(s, "sweep", "Sweep a user's settled custody into the launch vault", (*launchv1.LaunchClient).SweepToVault)
}

func (s *session) reclaimCommand() *cobra.Command {
	return launchAction(s, "reclaim", "Return the acting wallet's uncommitted custody funds after graduation", (*launchv1.LaunchClient).ReclaimCustody)
}

func (s *session) allocateCommand() *cobra.Command {
	return userAction(s, "allocate", "Compute a user's token allocation", (*launchv1.LaunchClient).CalculateAllocation)
}

func (s *session) claimCommand() *cobra.Command {
	return launchAction(s, "claim", "Claim the acting wallet's allocated tokens", (*launchv1.LaunchClient).ClaimTokens)
}

func (s *session) withdrawCommand() *cobra.Command {
	return launchAction(s, "withdraw", "Withdraw raised funds to the creator", (*launchv1.LaunchClient).WithdrawFunds)
}

// userAction builds a command taking a launch argument and a --user flag
// that defaults to the acting wallet.
func userAction[Resp any](s *session, use, short string, method func(*launchv1.LaunchClient, context.Context, *launchv1.UserRequest, ...gogrpc.CallOption) (*Resp, error)) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   use + " <launch>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launchKey, err := keyArg(args, 0)
			if err != nil {
				return err
			}
			userKey, err := s.userKey(user)
			if err != nil {
				return err
			}
			return s.launchCall(cmd, func(ctx context.Context, c *launchv1.LaunchClient) (any, error) {
				return method(c, ctx, &launchv1.UserRequest{Launch: launchKey, User: userKey})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User wallet (defaults to --as)")
	return cmd
}

func (s *session) userKey(user string) (address.Key, error) {
	if user != "" {
		return parseKey(user)
	}
	wallet, ok, err := s.wallet()
	if err != nil {
		return address.Zero, err
	}
	if !ok {
		return address.Zero, fmt.Errorf("--user or an acting wallet is required")
	}
	return wallet.Key, nil
}
