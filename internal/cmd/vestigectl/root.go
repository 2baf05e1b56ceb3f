// Package vestigectl implements the command-line client for the launch
// service.
package vestigectl

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	gogrpc "google.golang.org/grpc"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	platformgrpc "github.com/vestige-labs/vestige/internal/platform/grpc"
	"github.com/vestige-labs/vestige/internal/platform/timeouts"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

const defaultAddr = "localhost:8090"

// DialFunc opens a connection to the launch service.
type DialFunc func(ctx context.Context, addr string) (*gogrpc.ClientConn, error)

func dialLaunch(ctx context.Context, addr string) (*gogrpc.ClientConn, error) {
	return platformgrpc.Dial(ctx, addr, launchv1.LaunchServiceName, timeouts.GRPCDial, nil)
}

// Options overrides the connection and clock; zero values use a
// plaintext connection that waits for SERVING and the wall clock.
type Options struct {
	Dial DialFunc
	Now  func() time.Time
}

type session struct {
	addr  string
	actor string
	seed  string
	dial  DialFunc
	now   func() time.Time
}

// NewRootCommand builds the vestigectl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	s := &session{dial: opts.Dial, now: opts.Now, seed: os.Getenv("VESTIGE_WALLET_SEED")}
	if s.dial == nil {
		s.dial = dialLaunch
	}
	if s.now == nil {
		s.now = time.Now
	}

	addr := os.Getenv("VESTIGE_LAUNCH_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	root := &cobra.Command{
		Use:           "vestigectl",
		Short:         "Operate token launches on a vestige launch server",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&s.addr, "addr", addr, "Launch server gRPC address")
	root.PersistentFlags().StringVar(&s.actor, "as", "", "Act as the development wallet derived from this label")

	root.AddCommand(
		s.faucetCommand(),
		s.launchCommand(),
		s.commitCommand(),
		s.fundCommand(),
		s.joinCommand(),
		s.undelegateCommand(),
		s.sweepCommand(),
		s.reclaimCommand(),
		s.allocateCommand(),
		s.claimCommand(),
		s.withdrawCommand(),
		s.poolCommand(),
		s.participantCommand(),
		s.custodyCommand(),
		s.balanceCommand(),
		s.eventsCommand(),
		s.executorCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args and renders errors with
// their domain code.
func Execute(ctx context.Context) error {
	root := NewRootCommand(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		return describe(err)
	}
	return nil
}

// describe replaces a gRPC status with "CODE: message" when the server
// attached a domain code.
func describe(err error) error {
	if domainErr := apperrors.FromStatus(err); domainErr != nil {
		return fmt.Errorf("%s: %s", domainErr.Code, domainErr.Message)
	}
	return err
}

// call dials the server, signs a wallet token when a wallet is set, and
// prints the response as indented JSON.
func (s *session) call(cmd *cobra.Command, fn func(ctx context.Context, conn *gogrpc.ClientConn) (any, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.GRPCRequest)
	defer cancel()

	conn, err := s.dial(ctx, s.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	wallet, ok, err := s.wallet()
	if err != nil {
		return err
	}
	if ok {
		token, err := wallet.Sign(s.now(), walletauth.DefaultTTL)
		if err != nil {
			return err
		}
		ctx = launchv1.WithWalletToken(ctx, token)
	}
	out, err := fn(ctx, conn)
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func (s *session) launchCall(cmd *cobra.Command, fn func(ctx context.Context, client *launchv1.LaunchClient) (any, error)) error {
	return s.call(cmd, func(ctx context.Context, conn *gogrpc.ClientConn) (any, error) {
		return fn(ctx, launchv1.NewLaunchClient(conn))
	})
}

// wallet returns the acting wallet: --as wins over VESTIGE_WALLET_SEED.
func (s *session) wallet() (walletauth.Wallet, bool, error) {
	if s.actor != "" {
		return walletauth.FromLabel(s.actor), true, nil
	}
	if s.seed == "" {
		return walletauth.Wallet{}, false, nil
	}
	seed, err := hex.DecodeString(strings.TrimSpace(s.seed))
	if err != nil {
		return walletauth.Wallet{}, false, fmt.Errorf("VESTIGE_WALLET_SEED: %w", err)
	}
	wallet, err := walletauth.FromSeed(seed)
	if err != nil {
		return walletauth.Wallet{}, false, fmt.Errorf("VESTIGE_WALLET_SEED: %w", err)
	}
	return wallet, true, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseKey accepts a 64-character hex key, "native" for the native asset,
// or any other label, which names the development wallet of that label.
func parseKey(value string) (address.Key, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return address.Zero, fmt.Errorf("key is required")
	case strings.EqualFold(value, "native"):
		return assets.Native, nil
	case len(value) == 2*address.Size:
		if key, err := address.Parse(value); err == nil {
			return key, nil
		}
	}
	return walletauth.FromLabel(value).Key, nil
}

func keyArg(args []string, i int) (address.Key, error) {
	if i >= len(args) {
		return address.Zero, fmt.Errorf("missing argument %d", i+1)
	}
	return parseKey(args[i])
}
