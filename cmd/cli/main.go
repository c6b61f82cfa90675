package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/internal/config"
	"github.com/gurdwarasoft/seva-scheduler/pkg/clients/gmailclient"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/fairness"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/services"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
	"github.com/gurdwarasoft/seva-scheduler/pkg/postgres"
	"github.com/gurdwarasoft/seva-scheduler/pkg/utils"
	"github.com/gurdwarasoft/seva-scheduler/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database *postgres.DB
	notifier services.Notifier
	clock    db.Clock
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Seva Scheduler CLI - Manage sevadar assignments",
		Long:  `A CLI tool for staffing gurdwara program bookings: auto-assignment, swaps, overrides, fairness reports, and booking lifecycle maintenance.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(autoAssignCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(swapCmd())
	rootCmd.AddCommand(overrideCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(checkCapacityCmd())
	rootCmd.AddCommand(expireSweepCmd())
	rootCmd.AddCommand(listStaffCmd())
	rootCmd.AddCommand(listBookingsCmd())
	rootCmd.AddCommand(itemNeedsCmd())
	rootCmd.AddCommand(busyStaffCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, and the optional notifier
func initApp() error {
	var err error
	app = &App{
		ctx:   context.Background(),
		clock: db.SystemClock{},
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Connect to postgres
	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.logger.Debug("Database connection established")

	// Initialize the gmail notifier only when configured
	if app.cfg.GmailUserID != "" {
		app.logger.Info("Initializing gmail client", zap.String("sender", app.cfg.GmailSender))
		oauthCfg, err := config.LoadOAuthClient(env)
		if err != nil {
			return fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		var gmailClient *gmailclient.Client
		if token, tokenErr := utils.LoadCachedToken(env); tokenErr == nil && token != nil {
			// A valid cached token skips the interactive authorization flow.
			gmailClient, err = gmailclient.NewClientWithToken(app.ctx, oauthCfg, token, app.cfg.GmailSender)
		} else {
			gmailClient, err = gmailclient.NewClient(app.ctx, oauthCfg, env, app.cfg.GmailSender)
		}
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		app.notifier = gmailClient
		app.logger.Debug("Gmail client initialized successfully")
	} else {
		app.logger.Info("Assignment notices disabled (no gmailUserID configured)")
	}

	return nil
}

// Command definitions

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply any pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.database.RunMigrations(app.ctx); err != nil {
				return err
			}
			fmt.Println("\n✓ Migrations applied")
			return nil
		},
	}
}

func autoAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoAssign <booking_id>",
		Short: "Propose sevadar assignments for a booking's unmet needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			weeks, _ := cmd.Flags().GetInt("weeks")
			if weeks == 0 {
				weeks = app.cfg.WindowWeeks
			}

			result, err := services.AutoAssign(app.ctx, app.database, app.notifier, app.clock, app.logger, args[0], weeks, dryRun)
			if err != nil {
				return err
			}

			// Display results
			if dryRun {
				fmt.Printf("\n✓ Dry run for booking %s (nothing saved)\n\n", result.BookingID)
			} else {
				fmt.Printf("\n✓ Auto-assignment completed for booking %s\n\n", result.BookingID)
			}

			if len(result.Created) > 0 {
				fmt.Printf("Proposed %d assignments:\n", len(result.Created))
				for _, a := range result.Created {
					fmt.Printf("  ✓ item %s → staff %s (%s)\n", a.BookingItemID, a.StaffID, a.ID)
				}
				fmt.Println()
			} else {
				fmt.Println("No new assignments were needed.")
			}

			if len(result.Shortages) > 0 {
				fmt.Printf("⚠️  %d unfilled units remain:\n", len(result.Shortages))
				for _, sh := range result.Shortages {
					fmt.Printf("  ✗ item %s: %d more %s\n", sh.ItemID, sh.Needed, sh.Role)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute the plan without saving or notifying")
	cmd.Flags().Int("weeks", 0, "Fairness window in weeks (default from config)")

	return cmd
}

func approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <booking_id>",
		Short: "Confirm a pending booking and promote its proposed assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.ApproveBooking(app.ctx, app.database, app.logger, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n✓ Booking %s confirmed\n", args[0])
			return nil
		},
	}
}

func swapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <assignment_a> <assignment_b>",
		Short: "Swap the sevadars on two assignments atomically",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sameBookingOnly, _ := cmd.Flags().GetBool("same-booking")

			if err := services.SwapAssignments(app.ctx, app.database, app.logger, args[0], args[1], sameBookingOnly); err != nil {
				return err
			}
			fmt.Printf("\n✓ Swapped %s and %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().Bool("same-booking", false, "Restrict the swap to assignments on the same booking")

	return cmd
}

func overrideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "override <item_id> <from_staff_id> <to_staff_id>",
		Short: "Replace one sevadar with another on a booking item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.OverrideAssignment(app.ctx, app.database, app.logger, args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Printf("\n✓ Item %s: %s replaced by %s\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show fairness credits per sevadar over the rolling window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks, _ := cmd.Flags().GetInt("weeks")
			skillFlag, _ := cmd.Flags().GetString("skill")
			jatha, _ := cmd.Flags().GetString("jatha")
			name, _ := cmd.Flags().GetString("name")

			if weeks == 0 {
				weeks = app.cfg.WindowWeeks
			}

			filters := fairness.Filters{Jatha: jatha, Name: name}
			if skillFlag != "" {
				skill := model.Skill(strings.ToUpper(skillFlag))
				if !skill.IsValid() {
					return fmt.Errorf("unknown skill %q (want PATH or KIRTAN)", skillFlag)
				}
				filters.Skill = &skill
			}

			rows, err := services.FairnessReport(app.ctx, app.database, app.clock, app.logger, weeks, filters)
			if err != nil {
				return err
			}

			fmt.Printf("\nFairness report (%d-week window), %d sevadars:\n\n", weeks, len(rows))
			fmt.Printf("%-24s %12s %10s %14s %12s\n", "Name", "Window", "(count)", "Lifetime", "(count)")
			for _, row := range rows {
				fmt.Printf("%-24s %12d %10d %14d %12d\n",
					row.Name, row.CreditsWindow, row.CountWindow, row.CreditsLifetime, row.CountLifetime)
				for _, pb := range row.Programs {
					fmt.Printf("    %-20s window %d lifetime %d\n", pb.ProgramName, pb.CreditsWindow, pb.CreditsLifetime)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int("weeks", 0, "Fairness window in weeks (default from config)")
	cmd.Flags().String("skill", "", "Only staff holding this skill (PATH or KIRTAN)")
	cmd.Flags().String("jatha", "", "Only staff in this jatha")
	cmd.Flags().String("name", "", "Only staff whose name contains this text")

	return cmd
}

func checkCapacityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkCapacity <start> <end> <category>...",
		Short: "Check venue category caps for a candidate booking window",
		Long:  `Times are RFC3339, e.g. 2026-09-01T10:00:00Z. Categories are PATH, KIRTAN, or OTHER; repeat a category once per requested program.`,
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			end, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}

			requested := make([]model.ProgramCategory, 0, len(args)-2)
			for _, raw := range args[2:] {
				requested = append(requested, model.ProgramCategory(strings.ToUpper(raw)))
			}

			window := model.Window{Start: start, End: end}
			if err := services.CheckCapacity(app.ctx, app.database, app.logger, window, requested); err != nil {
				return err
			}

			fmt.Println("\n✓ The requested programs fit within the venue caps")
			return nil
		},
	}
}

func expireSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expireSweep",
		Short: "Expire stale pending bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loop, _ := cmd.Flags().GetBool("loop")
			maxAge := time.Duration(app.cfg.PendingExpiryDays) * 24 * time.Hour

			if !loop {
				count, err := services.ExpireStaleBookings(app.ctx, app.database, app.clock, app.logger, maxAge)
				if err != nil {
					return err
				}
				fmt.Printf("\n✓ Expired %d stale bookings\n", count)
				return nil
			}

			if app.cfg.SweepRRule == "" {
				return fmt.Errorf("loop mode requires sweepRRule in the config")
			}
			rule, err := rrule.StrToRRule(app.cfg.SweepRRule)
			if err != nil {
				return fmt.Errorf("invalid sweepRRule: %w", err)
			}

			fmt.Printf("Running sweep on schedule %s (Ctrl-C to stop)\n", app.cfg.SweepRRule)
			for {
				next := rule.After(app.clock.Now(), false)
				if next.IsZero() {
					app.logger.Info("Sweep schedule exhausted, stopping")
					return nil
				}
				app.logger.Info("Next sweep scheduled", zap.Time("at", next))

				select {
				case <-app.ctx.Done():
					return app.ctx.Err()
				case <-time.After(time.Until(next)):
				}

				count, err := services.ExpireStaleBookings(app.ctx, app.database, app.clock, app.logger, maxAge)
				if err != nil {
					app.logger.Error("Sweep failed", zap.Error(err))
					continue
				}
				app.logger.Info("Sweep completed", zap.Int("expired", count))
			}
		},
	}

	cmd.Flags().Bool("loop", false, "Keep running on the configured sweepRRule schedule")

	return cmd
}

func listStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listStaff",
		Short: "List all registered sevadars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			staff, err := app.database.ListStaff(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list staff: %w", err)
			}

			app.logger.Info("Staff fetched successfully", zap.Int("count", len(staff)))

			fmt.Printf("\nFound %d sevadars:\n\n", len(staff))
			for _, s := range staff {
				status := "active"
				if !s.Active {
					status = "inactive"
				}
				jathaInfo := ""
				if s.Jatha != "" {
					jathaInfo = fmt.Sprintf(" [Jatha: %s]", s.Jatha)
				}
				fmt.Printf("- %s (%s) - %s - %s%s\n",
					s.Name,
					s.ID,
					status,
					strings.Join(s.Skills, ", "),
					jathaInfo,
				)
			}

			return nil
		},
	}
}

func listBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listBookings <start> <end>",
		Short: "List active bookings overlapping a window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			end, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}

			statuses := make([]string, 0, len(model.ActiveBookingStatuses))
			for _, s := range model.ActiveBookingStatuses {
				statuses = append(statuses, string(s))
			}

			bookings, err := app.database.ListBookingsOverlapping(app.ctx, start, end, statuses)
			if err != nil {
				return fmt.Errorf("failed to list bookings: %w", err)
			}

			fmt.Printf("\nFound %d bookings:\n\n", len(bookings))
			for _, b := range bookings {
				fmt.Printf("- %s  %s → %s  [%s]  %s\n",
					b.ID,
					b.StartAt.Format(time.RFC3339),
					b.EndAt.Format(time.RFC3339),
					b.Status,
					b.Location,
				)
			}

			return nil
		},
	}
}

func itemNeedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "itemNeeds <item_id>",
		Short: "Show the unmet skill needs of one booking item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			needs, err := services.ItemNeeds(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nItem %s still needs:\n", args[0])
			fmt.Printf("  PATH:   %d\n", needs.Path)
			fmt.Printf("  KIRTAN: %d\n", needs.Kirtan)
			return nil
		},
	}
}

func busyStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "busyStaff <start> <end>",
		Short: "List sevadars already committed during a window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			end, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}

			ids, err := services.BusyStaffIDs(app.ctx, app.database, app.logger, model.Window{Start: start, End: end})
			if err != nil {
				return err
			}

			fmt.Printf("\n%d sevadars are busy in that window:\n", len(ids))
			for _, id := range ids {
				fmt.Printf("  - %s\n", id)
			}
			return nil
		},
	}
}
