package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/networks"
	"github.com/zdunecki/tezosvote/pkg/utils"
	"github.com/zdunecki/tezosvote/pkg/voting"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var network string

// ExitError is returned once the failure has already been reported to the operator;
// the caller only needs to exit with a non-zero status.
type ExitError struct {
	Err error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

var rootCmd = &cobra.Command{
	Use:   "tezos-vote",
	Short: "Interactive wizard for voting in the Tezos protocol amendment process",
	Long: `A wizard that sets up a voter key for octez-client and submits
proposals or ballots depending on the current voting period.

Commands are run under the 'tezos' user.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runVote,
}

func init() {
	rootCmd.Flags().StringVar(&network, "network", "mainnet",
		"Name of the network to vote on. Is 'mainnet' by default, but can be a testnet or the (part after @) "+
			"name of any custom instance. For example, to use the tezos-baking-custom@voting service, input 'voting'. "+
			"You need to already have set up the custom network using systemd services. "+
			"Known networks: "+networks.Summary()+".")
}

// Execute runs the root command with a context cancelled on SIGINT and SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runVote(cmd *cobra.Command, args []string) error {
	logger, closer, err := utils.NewFileLogger("tezos-vote", "tezos-vote.log")
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("Starting the Tezos Voting Wizard.")

	out := cmd.OutOrStdout()
	ui := cli.NewWizard(cli.NewTerminalReader(os.Stdin, out), out, logger)
	defer ui.Close()

	ctrl := voting.NewController(ui, voting.DefaultOptions(logger))
	return finish(cmd.Context(), out, logger, ctrl.Run(cmd.Context(), network))
}

// finish reports the outcome of a wizard run. Cancellations come back as *ExitError,
// since the operator was already told; other failures are returned for main to print.
func finish(ctx context.Context, out io.Writer, logger hclog.Logger, err error) error {
	if err != nil && ctx.Err() != nil && !errors.Is(err, cli.ErrCancelled) {
		err = fmt.Errorf("%w: %v", cli.ErrInterrupted, err)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, cli.ErrCancelled):
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Exiting the Tezos Voting Wizard.")
		if errors.Is(err, cli.ErrEOF) {
			logger.Error("Reached EOF.")
		} else {
			logger.Info("wizard cancelled", "reason", err)
		}
		logger.Info("Exiting the Tezos Voting Wizard.")
		return &ExitError{Err: err}
	default:
		fmt.Fprintln(out, cli.Red("Error in the Tezos Voting Wizard, exiting."))
		logger.Error("Error in the Tezos Voting Wizard, exiting.", "error", err)
		logger.Info("Exiting the Tezos Voting Wizard.")
		return err
	}
}
