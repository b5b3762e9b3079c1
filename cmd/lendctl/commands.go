package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/segyhp/lending-engine/internal/config"
	"github.com/segyhp/lending-engine/internal/domain"
	"github.com/segyhp/lending-engine/internal/schedule"
	"github.com/segyhp/lending-engine/internal/scoring"
	"github.com/segyhp/lending-engine/pkg/logger"
	"github.com/segyhp/lending-engine/pkg/utils"
)

const dateLayout = "2006-01-02"

// app carries what every subcommand needs once the root has loaded config
type app struct {
	cfg *config.Config
	log *slog.Logger
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "lendctl",
		Short:         "Offline credit scoring and repayment schedule calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}

			cfg, err := config.Load(files...)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg

			level := cfg.Logging.Level
			if override, _ := cmd.Flags().GetString("log-level"); override != "" {
				level = override
			}
			a.log = logger.NewWithWriter(cmd.ErrOrStderr(), level, "text")
			return nil
		},
	}

	root.PersistentFlags().String("env-file", "", "dotenv file to load before reading the environment")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(a.scoreCmd(), a.scheduleCmd(), a.dueTodayCmd())
	return root
}

func (a *app) today() time.Time {
	return domain.DateOf(a.now().In(a.cfg.Location()))
}

func (a *app) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return a.today(), nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, a.cfg.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be formatted as %s", raw, dateLayout)
	}
	return t, nil
}

// --- Score Command ---

func (a *app) scoreCmd() *cobra.Command {
	var (
		income          string
		employment      string
		employmentYears float64
		yearsAtAddress  float64
		asOf            string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a borrower profile with no loan history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := domain.BorrowerProfile{
				EmploymentStatus: domain.ParseEmploymentStatus(employment),
			}
			if employment != "" && !profile.EmploymentStatus.IsValid() {
				return fmt.Errorf("unknown employment status %q", employment)
			}
			if income != "" {
				amount, err := utils.DecimalFromString(income)
				if err != nil {
					return fmt.Errorf("invalid income: %w", err)
				}
				profile.MonthlyIncome = decimal.NewNullDecimal(amount)
			}
			if cmd.Flags().Changed("employment-years") {
				profile.EmploymentYears = &employmentYears
			}
			if cmd.Flags().Changed("years-at-address") {
				profile.YearsAtAddress = &yearsAtAddress
			}

			day, err := a.parseDate(asOf)
			if err != nil {
				return err
			}

			assessment := scoring.Evaluate(profile, nil, nil, day, a.cfg.GetBaseInterestRate())
			a.log.Debug("profile scored", "score", assessment.Score, "category", assessment.Info.Category)
			return writeJSON(cmd.OutOrStdout(), assessment)
		},
	}

	cmd.Flags().StringVar(&income, "income", "", "monthly income")
	cmd.Flags().StringVar(&employment, "employment", "", "employment status (employed, self-employed, unemployed, student, retired)")
	cmd.Flags().Float64Var(&employmentYears, "employment-years", 0, "years with the current employer")
	cmd.Flags().Float64Var(&yearsAtAddress, "years-at-address", 0, "years at the current address")
	cmd.Flags().StringVar(&asOf, "as-of", "", "scoring date (YYYY-MM-DD, default today)")
	return cmd
}

// --- Schedule Command ---

type loanFlags struct {
	principal string
	rate      string
	term      int
	frequency string
	start     string
}

func (f *loanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.principal, "principal", "", "loan principal")
	cmd.Flags().StringVar(&f.rate, "rate", "", "annual interest rate in percent (default BASE_INTEREST_RATE)")
	cmd.Flags().IntVar(&f.term, "term", 12, "loan term in months")
	cmd.Flags().StringVar(&f.frequency, "frequency", string(domain.FrequencyMonthly), "repayment frequency (daily, weekly, monthly)")
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("principal")
}

// loan builds an unsaved loan the same way the service does on creation.
func (a *app) loan(f *loanFlags) (*domain.Loan, error) {
	principal, err := utils.DecimalFromString(f.principal)
	if err != nil {
		return nil, fmt.Errorf("invalid principal: %w", err)
	}
	if !principal.IsPositive() {
		return nil, fmt.Errorf("principal must be greater than zero")
	}

	rate := a.cfg.GetBaseInterestRate()
	if f.rate != "" {
		if rate, err = utils.DecimalFromString(f.rate); err != nil {
			return nil, fmt.Errorf("invalid rate: %w", err)
		}
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("interest rate must not be negative")
	}

	if f.term <= 0 {
		return nil, fmt.Errorf("loan term must be at least one month")
	}

	frequency := domain.Frequency(f.frequency).OrDefault()
	switch frequency {
	case domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly:
	default:
		return nil, fmt.Errorf("unknown frequency %q", f.frequency)
	}

	start, err := a.parseDate(f.start)
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:                uuid.New(),
		Principal:         principal,
		InterestRate:      rate,
		TermMonths:        f.term,
		RepaymentSchedule: frequency,
		StartDate:         start,
		EndDate:           schedule.EndDate(start, f.term),
		Status:            domain.LoanStatusActive,
		TotalDue:          utils.RoundCurrency(schedule.TotalDue(principal, rate, f.term)),
	}
	loan.Recalculate()
	return loan, nil
}

type scheduleOutput struct {
	Loan     *domain.Loan        `json:"loan"`
	Schedule []*domain.Repayment `json:"schedule"`
}

func (a *app) scheduleCmd() *cobra.Command {
	flags := &loanFlags{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the repayment schedule of a prospective loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := a.loan(flags)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), scheduleOutput{Loan: loan, Schedule: schedule.Generate(loan)})
		},
	}

	flags.register(cmd)
	return cmd
}

// --- Due Today Command ---

func (a *app) dueTodayCmd() *cobra.Command {
	flags := &loanFlags{}
	var on string

	cmd := &cobra.Command{
		Use:   "due-today",
		Short: "Print the installment a loan would generate on a given day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := a.loan(flags)
			if err != nil {
				return err
			}
			day, err := a.parseDate(on)
			if err != nil {
				return err
			}

			repayment := schedule.GenerateDueToday(loan, nil, nil, day)
			if repayment == nil {
				a.log.Info("no installment generated", "date", day.Format(dateLayout))
			}
			return writeJSON(cmd.OutOrStdout(), repayment)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&on, "on", "", "generation date (YYYY-MM-DD, default today)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
