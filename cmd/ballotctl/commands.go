package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/scoring"
	"github.com/vncsmyrnk/ballot/internal/core/services"
)

const cliActor = "cli"

type app struct {
	runoffs ports.RunoffService
	audit   ports.AuditService
	fraud   ports.FraudService
	auth    ports.AuthService
	out     io.Writer
	in      io.Reader
}

type appOpener func(ctx context.Context) (*app, func(), error)

func newRootCmd(open appOpener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ballotctl",
		Short:         "Administer ballots, runoffs and audits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// with opens the app for the duration of one command.
	with := func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := services.WithActor(cmd.Context(), cliActor)
			a, closeApp, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeApp()
			return fn(ctx, a, args)
		}
	}

	runoffCmd := &cobra.Command{
		Use:   "runoff",
		Short: "Manage runoff elections",
	}
	runoffCmd.AddCommand(
		&cobra.Command{
			Use:   "detect",
			Short: "Create runoffs for every position whose top candidates are tied",
			Args:  cobra.NoArgs,
			RunE: with(func(ctx context.Context, a *app, _ []string) error {
				created, err := a.runoffs.DetectAndCreateRunoffs(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created %d runoff election(s)\n", len(created))
				return printJSON(a.out, created)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List runoff elections",
			Args:  cobra.NoArgs,
			RunE: with(func(ctx context.Context, a *app, _ []string) error {
				runoffs, err := a.runoffs.ListRunoffElections(ctx)
				if err != nil {
					return err
				}
				return printJSON(a.out, runoffs)
			}),
		},
		&cobra.Command{
			Use:   "start [id]",
			Short: "Open a pending runoff for voting",
			Args:  cobra.ExactArgs(1),
			RunE: with(func(ctx context.Context, a *app, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				runoff, err := a.runoffs.StartRunoffElection(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(a.out, runoff)
			}),
		},
		&cobra.Command{
			Use:   "complete [id]",
			Short: "Close an active runoff and record its winner",
			Args:  cobra.ExactArgs(1),
			RunE: with(func(ctx context.Context, a *app, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				runoff, err := a.runoffs.CompleteRunoffElection(ctx, id)
				if err != nil {
					return err
				}
				if runoff.WinnerCandidateID == nil {
					fmt.Fprintln(a.out, "Runoff ended in another tie; no winner recorded")
				}
				return printJSON(a.out, runoff)
			}),
		},
		&cobra.Command{
			Use:   "results [id]",
			Short: "Show runoff vote counts",
			Args:  cobra.ExactArgs(1),
			RunE: with(func(ctx context.Context, a *app, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				results, err := a.runoffs.GetRunoffResults(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(a.out, results)
			}),
		},
	)

	var voteID int64
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit one vote, or every vote when --vote is omitted",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			if voteID > 0 {
				result, err := a.audit.AuditVote(ctx, voteID)
				if err != nil {
					return err
				}
				return printJSON(a.out, result)
			}
			report, err := a.audit.AuditAllVotes(ctx)
			if err != nil {
				return err
			}
			return printJSON(a.out, report)
		}),
	}
	auditCmd.Flags().Int64Var(&voteID, "vote", 0, "vote id to audit")

	var minRisk int
	suspiciousCmd := &cobra.Command{
		Use:   "suspicious",
		Short: "List votes whose audit risk is at least --min-risk",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			votes, err := a.audit.SuspiciousVotes(ctx, minRisk)
			if err != nil {
				return err
			}
			return printJSON(a.out, votes)
		}),
	}
	suspiciousCmd.Flags().IntVar(&minRisk, "min-risk", scoring.ValidThreshold, "minimum risk score")

	fraudCmd := &cobra.Command{
		Use:   "fraud",
		Short: "Scan the vote history for fraud patterns",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			result, err := a.fraud.DetectFraudPatterns(ctx)
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		}),
	}

	importCmd := &cobra.Command{
		Use:   "import-vouchers [file]",
		Short: "Import vouchers, one per line, from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: with(func(ctx context.Context, a *app, args []string) error {
			src := a.in
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}

			vouchers, err := readVouchers(src)
			if err != nil {
				return err
			}
			imported, err := a.auth.ImportVouchers(ctx, vouchers)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d of %d voucher(s)\n", imported, len(vouchers))
			return nil
		}),
	}

	rootCmd.AddCommand(runoffCmd, auditCmd, suspiciousCmd, fraudCmd, importCmd)
	return rootCmd
}

// readVouchers reads one voucher per line. Blank lines and lines starting
// with # are skipped.
func readVouchers(r io.Reader) ([]string, error) {
	var vouchers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		vouchers = append(vouchers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vouchers: %w", err)
	}
	return vouchers, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
