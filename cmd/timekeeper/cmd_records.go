package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timekeeper/internal/core"
	"timekeeper/internal/payroll"
	"timekeeper/internal/types"
)

var (
	prefillMonth int
	prefillYear  int
)

// askCmd sends one message through the assistant
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message to the assistant and print the reply",
	Example: `  timekeeper ask "worked on the invoice export today"
  timekeeper ask "show timesheet for july"
  timekeeper ask "email timesheet to hr@example.com"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// timesheetCmd prints the table, optionally for one month
var timesheetCmd = &cobra.Command{
	Use:   "timesheet [month]",
	Short: "Print all attendance rows, or those of one month",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTimesheet,
}

var salaryCmd = &cobra.Command{
	Use:   "salary",
	Short: "Estimate gross salary from Present days",
	Args:  cobra.NoArgs,
	RunE:  runSalary,
}

// prefillCmd creates blank rows for a month, weekends marked Week Off
var prefillCmd = &cobra.Command{
	Use:   "prefill",
	Short: "Create one blank row per day of a month (weekends as Week Off)",
	Args:  cobra.NoArgs,
	RunE:  runPrefill,
}

var clearCmd = &cobra.Command{
	Use:   "clear [YYYY-MM-DD]",
	Short: "Blank status and remarks for a date (default: today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClear,
}

func init() {
	now := time.Now()
	prefillCmd.Flags().IntVar(&prefillMonth, "month", int(now.Month()), "Month number (1-12)")
	prefillCmd.Flags().IntVar(&prefillYear, "year", now.Year(), "Four digit year")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	message := joinArgs(args)
	logger.Debug("Asking", zap.String("message", message))
	fmt.Fprintln(cmd.OutOrStdout(), a.assistant.Handle(ctx, message))

	if a.assistant.WantsDownload(message) {
		if path, err := a.assistant.TimesheetFile(ctx); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "📥 Timesheet file: %s\n", path)
		}
	}
	return nil
}

func runTimesheet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		month, ok := parseMonthArg(args[0])
		if !ok {
			return fmt.Errorf("unknown month %q", args[0])
		}
		rows, err := st.ListMonth(ctx, month.String())
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(out, "No records found for %s.\n", month)
			return nil
		}
		fmt.Fprintln(out, core.FormatTimesheet(rows, ""))
		return nil
	}

	rows, err := st.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No attendance data found.")
		return nil
	}
	fmt.Fprintln(out, core.FormatTimesheet(rows, "None"))
	return nil
}

func runSalary(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.ListAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), payroll.NewEstimator(cfg.Payroll).Estimate(rows))
	return nil
}

func runPrefill(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	added, err := st.PrefillMonth(ctx, time.Month(prefillMonth), prefillYear)
	if err != nil {
		return err
	}
	logger.Info("Prefilled month", zap.Int("month", prefillMonth), zap.Int("year", prefillYear), zap.Int("added", added))
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Pre-filled %s %d into %s\n", time.Month(prefillMonth), prefillYear, cfg.Store.Path)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	date := types.Today(time.Now())
	if len(args) == 1 {
		if date, err = types.ParseDate(args[0]); err != nil {
			return err
		}
	}
	if err := st.Clear(ctx, date); err != nil {
		return fmt.Errorf("failed to clear entry: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Entry on %s cleared successfully.\n", date.Format(types.DateLayout))
	return nil
}

// parseMonthArg accepts a month name or number.
func parseMonthArg(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), true
	}
	return types.ParseMonth(s)
}
