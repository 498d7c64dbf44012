package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/config"
	"github.com/dori/airtrack/internal/logging"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/sheet"
	"github.com/spf13/cobra"
)

type cliOptions struct {
	configPath string
	themeName  string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "airtrack",
		Short:         "Track airdrop campaigns, deadlines and rewards",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts.configPath, opts.themeName)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/airtrack/config.yaml)")
	rootCmd.Flags().StringVar(&opts.themeName, "theme", "", "theme for this session (nord, dracula, gruvbox, catppuccin, classic)")

	rootCmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newBackupCmd(opts),
		newHistoryCmd(opts),
		newPasswdCmd(opts),
		newRecoveryCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("airtrack v%s\n", version)
			},
		},
	)
	return rootCmd
}

// openApp loads config and opens the app with console logging. The
// returned app holds the single-instance lock until closed.
func openApp(opts *cliOptions) (*app.App, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logging.NewConsole(cfg.Log.Level))
}

// withApp runs fn with an authenticated app
func withApp(opts *cliOptions, fn func(a *app.App, p *prompter) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return withPrompter(func(p *prompter) error {
		if err := authenticate(a, p); err != nil {
			return err
		}
		return fn(a, p)
	})
}

func newAddCmd(opts *cliOptions) *cobra.Command {
	var (
		status, due, at, progress, link, notes string
		reward                                 float64
		noReminder                             bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Example: `  airtrack add "Layer Zero" --due 2025-01-01 --time 09:00 --reward 1500000
  airtrack add "Scroll" --status monitoring --progress 50%`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.NewProject(strings.Join(args, " "))
			var err error
			if p.Status, err = model.ParseStatus(status); err != nil {
				return err
			}
			if p.Progress, err = model.ParseProgress(progress); err != nil {
				return err
			}
			p.DueDate = due
			p.DueTime = at
			p.EstimatedReward = reward
			p.Link = link
			p.Notes = notes
			p.ReminderEnabled = !noReminder

			return withApp(opts, func(a *app.App, _ *prompter) error {
				created, err := a.AddProject(p)
				if err != nil {
					return err
				}
				fmt.Printf("Created: %s\n", created.Name)
				if due := created.FormatDue(); due != "" {
					fmt.Printf("Due: %s\n", due)
				}
				if created.EstimatedReward != 0 {
					fmt.Printf("Reward: %s\n", model.FormatReward(created.EstimatedReward))
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&status, "status", string(model.StatusActive), "Active, Completed, Monitoring or Dropped")
	f.StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	f.StringVar(&at, "time", "", "due time (HH:MM)")
	f.StringVar(&progress, "progress", string(model.Progress0), "0%, 25%, 50%, 75% or 100%")
	f.Float64Var(&reward, "reward", 0, "estimated reward")
	f.StringVar(&link, "link", "", "project link")
	f.StringVar(&notes, "notes", "", "notes")
	f.BoolVar(&noReminder, "no-reminder", false, "do not remind when due")
	return cmd
}

func newListCmd(opts *cliOptions) *cobra.Command {
	var (
		status  string
		overdue bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want model.Status
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				want = s
			}
			return withApp(opts, func(a *app.App, _ *prompter) error {
				rows := filterProjects(a.Data.Snapshot(), want, overdue, time.Now())
				if len(rows) == 0 {
					fmt.Println("No projects.")
					return nil
				}
				fmt.Println(renderTable(rows, a.Snoozes.Until, time.Now()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show projects with this status")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only show overdue projects")
	return cmd
}

func filterProjects(rows []model.Project, status model.Status, overdue bool, now time.Time) []model.Project {
	var out []model.Project
	for _, p := range rows {
		if status != "" && p.Status != status {
			continue
		}
		if overdue && !p.IsOverdue(now) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// renderTable draws rows as a bordered table. snoozedUntil reports an
// active snooze for a project id.
func renderTable(rows []model.Project, snoozedUntil func(id string) (time.Time, bool), now time.Time) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Project", "Status", "Due", "Progress", "Reward", "Reminder", "Notes")
	for _, p := range rows {
		reminder := "on"
		if !p.ReminderEnabled {
			reminder = "off"
		}
		if until, ok := snoozedUntil(p.ID); ok && until.After(now) {
			reminder = "snoozed until " + until.Format("15:04")
		}
		t.Row(p.Name, string(p.Status), p.FormatDue(), string(p.Progress),
			model.FormatReward(p.EstimatedReward), reminder, p.NotesPreview())
	}
	return t.Render()
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App, _ *prompter) error {
				s := a.Stats()
				fmt.Printf("Total projects: %d\n", s.Total)
				for _, st := range model.Statuses {
					fmt.Printf("  %-11s %d\n", st, s.ByStatus[st])
				}
				fmt.Printf("Overdue:        %d\n", s.Overdue)
				fmt.Printf("Total reward:   %s\n", model.FormatReward(s.TotalReward))
				return nil
			})
		},
	}
}

func newExportCmd(opts *cliOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export projects to xlsx, csv or pdf",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := sheet.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app.App, _ *prompter) error {
				var path string
				if len(args) == 1 {
					path = withFormatExt(args[0], f)
				} else {
					cwd, err := os.Getwd()
					if err != nil {
						return err
					}
					path = a.DefaultExportPath(cwd, f)
				}
				if err := a.Export(path); err != nil {
					return err
				}
				fmt.Printf("Exported %d projects to %s\n", a.Data.Len(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx, csv or pdf")
	return cmd
}

// withFormatExt adds the format's extension when path has none
func withFormatExt(path string, f sheet.Format) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + "." + string(f)
}

func newImportCmd(opts *cliOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Replace all projects with the rows of an xlsx or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App, p *prompter) error {
				if !yes {
					ok, err := p.confirm(fmt.Sprintf("Replace %d projects with %s?", a.Data.Len(), filepath.Base(args[0])))
					if err != nil {
						return err
					}
					if !ok {
						return errAborted
					}
				}
				n, err := a.Import(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d projects\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newBackupCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the data, password and snooze files to the backup folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App, _ *prompter) error {
				b, err := a.Backup()
				if err != nil {
					return err
				}
				fmt.Printf("Backup created at %s\n", b.Time.Format("2006-01-02 15:04:05"))
				for _, f := range b.Files {
					fmt.Printf("  %s\n", f)
				}
				return nil
			})
		},
	}
}

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	var (
		project string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show reminders, snoozes, imports and other recorded events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App, _ *prompter) error {
				var (
					events []model.Event
					err    error
				)
				if project != "" {
					id, ok := findProject(a.Data.Snapshot(), project)
					if !ok {
						return fmt.Errorf("no project named %q", project)
					}
					events, err = a.ProjectEvents(id, limit)
				} else {
					events, err = a.RecentEvents(limit)
				}
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Println("No history yet.")
					return nil
				}
				for _, e := range events {
					fmt.Println(formatEvent(e))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "only events for this project (by name)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events")
	return cmd
}

// findProject matches name case-insensitively
func findProject(rows []model.Project, name string) (string, bool) {
	for _, p := range rows {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.ID, true
		}
	}
	return "", false
}

func formatEvent(e model.Event) string {
	line := fmt.Sprintf("%s  %-10s", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Kind.Label())
	if e.ProjectName != "" {
		line += " " + e.ProjectName
	}
	if e.Detail != "" {
		line += " (" + e.Detail + ")"
	}
	return line
}

func newPasswdCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Set or change the application password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return withPrompter(func(p *prompter) error {
				if !a.Gate.IsSet() {
					return authenticate(a, p)
				}
				current, err := p.password("Current password: ")
				if err != nil {
					return err
				}
				next, err := p.newPassword()
				if err != nil {
					return err
				}
				if err := a.ChangePassword(current, next); err != nil {
					return err
				}
				fmt.Println("Password changed.")
				return nil
			})
		},
	}
}

func newRecoveryCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Manage the security question used to reset a forgotten password",
	}

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Set the security question and answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App, p *prompter) error {
				question, err := p.line("Security question: ")
				if err != nil {
					return err
				}
				answer, err := p.line("Answer: ")
				if err != nil {
					return err
				}
				if err := a.Recovery.Setup(question, answer); err != nil {
					return err
				}
				fmt.Println("Security question saved.")
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password by answering the security question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Recovery.Has() {
				return errors.New("no security question has been set up")
			}
			question, err := a.Recovery.Question()
			if err != nil {
				return err
			}
			return withPrompter(func(p *prompter) error {
				fmt.Println(question)
				answer, err := p.line("Answer: ")
				if err != nil {
					return err
				}
				if err := a.Recovery.Check(answer); err != nil {
					return err
				}
				next, err := p.newPassword()
				if err != nil {
					return err
				}
				if err := a.ResetPassword(answer, next); err != nil {
					return err
				}
				fmt.Println("Password reset.")
				return nil
			})
		},
	}

	cmd.AddCommand(setup, reset)
	return cmd
}
