package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pcc/internal/app"
	"pcc/internal/config"
	"pcc/internal/db"
	"pcc/internal/domain"
	"pcc/internal/engine"
	"pcc/internal/sample"
	"pcc/internal/snapshot"
	"pcc/internal/views"
)

// newEngine is swapped in tests for a fixed clock and id sequence.
var newEngine = engine.New

// mutate applies fn through the store and saves the result.
func mutate(cmd *cobra.Command, fn func(engine.Engine, domain.Project) (domain.Project, error), after func(domain.Project) error) error {
	return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
		e := newEngine()
		p, err := ws.Store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return fn(e, p)
		})
		if err != nil {
			return err
		}
		return after(p)
	})
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create pcc.yml and save the sample project",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Config %s already exists\n", path)
			} else {
				if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				p := ws.Store.Read()
				if err := ws.Store.Replace(ctx, p); err != nil {
					return err
				}
				info, err := ws.Info(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %s ready (%s storage)\n", p.ID, info.Driver)
				if info.Driver == config.DriverSQLite {
					fmt.Fprintf(cmd.OutOrStdout(), "Database: %s (schema version %d)\n", db.Path(workspace), info.SchemaVersion)
					fmt.Fprintf(cmd.OutOrStdout(), "Keys: %s\n", strings.Join(info.Keys, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing pcc.yml")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the project with the sample project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				if err := ws.Reset(ctx, sample.Project()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Project reset to sample data")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"dashboard"},
		Short:   "Show the project dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				d := views.BuildDashboard(ws.Store.Read(), newEngine().Now(), limitsFrom(ws.Config))
				out := cmd.OutOrStdout()
				return printJSONOrTable(out, d, func() {
					fmt.Fprintf(out, "Project: %s (%s)\n", d.Name, d.ProjectID)
					if d.Goal != "" {
						fmt.Fprintf(out, "Goal: %s\n", d.Goal)
					}
					fmt.Fprintf(out, "Health: %s\n", d.HealthLabel)
					fmt.Fprintf(out, "Timeline: %s -> %s (%d%% elapsed)\n", d.StartDate, d.EndDate, d.Timeline)
					fmt.Fprintf(out, "Progress: %d%% (%d of %d tasks completed)\n", d.Progress, d.CompletedTasks, d.TotalTasks)

					tw := newTable(out)
					tw.SetTitle("Milestones")
					tw.AppendHeader(table.Row{"ID", "Name", "Status", "Progress", "Tasks"})
					for _, m := range d.Milestones {
						tw.AppendRow(table.Row{m.ID, m.Name, m.Status, fmt.Sprintf("%d%%", m.Progress), m.TaskCount})
					}
					tw.Render()

					if len(d.Metrics) > 0 {
						tw = newTable(out)
						tw.SetTitle("Metrics")
						tw.AppendHeader(table.Row{"Name", "Target", "Current", "Status"})
						for _, m := range d.Metrics {
							tw.AppendRow(table.Row{m.Name, m.Target, m.Current, m.Status.Label()})
						}
						tw.Render()
					}

					tw = newTable(out)
					tw.SetTitle("Top risks")
					tw.AppendHeader(table.Row{"ID", "Title", "Score", "Level", "Owner"})
					for _, r := range d.TopRisks {
						tw.AppendRow(table.Row{r.ID, r.Title, r.Score, r.Level, r.Owner})
					}
					tw.Render()

					renderTasks(out, "Overdue", d.Overdue)
					renderTasks(out, "Upcoming", d.Upcoming)
				})
			})
		},
	}
}

func healthCmd() *cobra.Command {
	health := &cobra.Command{
		Use:   "health",
		Short: "Project health status",
	}
	health.AddCommand(&cobra.Command{
		Use:       "set <green|yellow|red>",
		Short:     "Set the overall project health",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.HealthGreen), string(domain.HealthYellow), string(domain.HealthRed)},
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.HealthStatus(strings.ToLower(strings.TrimSpace(args[0])))
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.SetProjectHealth(p, status)
			}, func(p domain.Project) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Health: %s\n", p.HealthStatus.Label())
				return nil
			})
		},
	})
	return health
}

func milestoneCmd() *cobra.Command {
	milestone := &cobra.Command{
		Use:   "milestone",
		Short: "Milestones and their progress",
	}
	milestone.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				ms := ws.Store.Read().Milestones
				out := cmd.OutOrStdout()
				return printJSONOrTable(out, ms, func() {
					tw := newTable(out)
					tw.AppendHeader(table.Row{"ID", "Name", "Start", "End", "Status", "Progress", "Tasks"})
					for _, m := range ms {
						tw.AppendRow(table.Row{m.ID, m.Name, m.StartDate, m.EndDate, m.Status, fmt.Sprintf("%d%%", views.MilestoneProgress(m)), len(m.Tasks)})
					}
					tw.Render()
				})
			})
		},
	})
	return milestone
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Tasks live inside milestones. Status moves not-started -> in-progress -> completed -> blocked and back to not-started.",
	}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskAddCmd())
	task.AddCommand(taskCycleCmd())
	return task
}

func taskListCmd() *cobra.Command {
	var milestoneID string
	var overdue bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				p := ws.Store.Read()
				milestones := p.Milestones
				if milestoneID != "" {
					i := p.FindMilestone(milestoneID)
					if i < 0 {
						return fmt.Errorf("%w: milestone %s", engine.ErrNotFound, milestoneID)
					}
					milestones = milestones[i : i+1]
				}
				tasks := views.AllTasks(milestones)
				if overdue {
					tasks = views.OverdueTasks(tasks, newEngine().Now())
				}
				if tasks == nil {
					tasks = []domain.Task{}
				}
				out := cmd.OutOrStdout()
				return printJSONOrTable(out, tasks, func() {
					renderTasks(out, "", tasks)
				})
			})
		},
	}
	cmd.Flags().StringVar(&milestoneID, "milestone", "", "only tasks of this milestone")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only overdue tasks")
	return cmd
}

func taskAddCmd() *cobra.Command {
	var milestoneID, priority string
	var in engine.TaskInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to a milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Priority = domain.Priority(priority)
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.AddTask(p, milestoneID, in)
			}, func(p domain.Project) error {
				m := p.Milestones[p.FindMilestone(milestoneID)]
				t := m.Tasks[len(m.Tasks)-1]
				return printJSONOrTable(cmd.OutOrStdout(), t, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "Added task %s to %s\n", t.ID, m.Name)
				})
			})
		},
	}
	cmd.Flags().StringVar(&milestoneID, "milestone", "", "milestone id")
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Owner, "owner", "", "owner")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "low, medium, high or critical")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&in.EstimateHours, "estimate", 0, "estimate in hours")
	_ = cmd.MarkFlagRequired("milestone")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskCycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle <milestone-id> <task-id>",
		Short: "Advance a task to its next status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.CycleTaskStatus(p, args[0], args[1])
			}, func(p domain.Project) error {
				m := p.Milestones[p.FindMilestone(args[0])]
				t := m.Tasks[m.FindTask(args[1])]
				return printJSONOrTable(cmd.OutOrStdout(), t, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", t.ID, t.Status)
				})
			})
		},
	}
}

func riskCmd() *cobra.Command {
	risk := &cobra.Command{
		Use:   "risk",
		Short: "Risk register",
		Long:  "Risks score probability x impact. Levels: low < 4, medium < 8, high < 15, critical from 15.",
	}
	risk.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List risks, closed last",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				risks := views.RiskRegister(ws.Store.Read().Risks)
				scored := make([]views.ScoredRisk, 0, len(risks))
				for _, r := range risks {
					scored = append(scored, views.Score(r))
				}
				out := cmd.OutOrStdout()
				return printJSONOrTable(out, scored, func() {
					tw := newTable(out)
					tw.AppendHeader(table.Row{"ID", "Title", "P", "I", "Score", "Level", "Status", "Owner", "Review"})
					for _, r := range scored {
						tw.AppendRow(table.Row{r.ID, r.Title, r.Probability, r.Impact, r.Score, r.Level, r.Status, r.Owner, r.ReviewDate})
					}
					tw.Render()
				})
			})
		},
	})
	risk.AddCommand(&cobra.Command{
		Use:   "matrix",
		Short: "Show the probability x impact matrix of non-closed risks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				grid := views.MatrixGrid(ws.Store.Read().Risks)
				out := cmd.OutOrStdout()
				return printJSONOrTable(out, grid, func() {
					tw := newTable(out)
					tw.AppendHeader(table.Row{"Impact \\ Prob", 1, 2, 3, 4, 5})
					for row := 0; row < 5; row++ {
						cells := grid[row*5 : row*5+5]
						r := table.Row{cells[0].Impact}
						for _, c := range cells {
							r = append(r, matrixLabel(c))
						}
						tw.AppendRow(r)
					}
					tw.Render()
				})
			})
		},
	})
	risk.AddCommand(riskAddCmd())
	risk.AddCommand(&cobra.Command{
		Use:   "cycle <risk-id>",
		Short: "Advance a risk to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.CycleRiskStatus(p, args[0])
			}, func(p domain.Project) error {
				r := p.Risks[p.FindRisk(args[0])]
				return printJSONOrTable(cmd.OutOrStdout(), views.Score(r), func() {
					fmt.Fprintf(cmd.OutOrStdout(), "Risk %s is now %s\n", r.ID, r.Status)
				})
			})
		},
	})
	return risk
}

func matrixLabel(c views.MatrixCell) string {
	if len(c.Risks) == 0 {
		return "."
	}
	ids := make([]string, 0, len(c.Risks))
	for _, r := range c.Risks {
		ids = append(ids, r.ID)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(ids, ","), c.Level)
}

func riskAddCmd() *cobra.Command {
	var in engine.RiskInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.AddRisk(p, in)
			}, func(p domain.Project) error {
				r := views.Score(p.Risks[len(p.Risks)-1])
				return printJSONOrTable(cmd.OutOrStdout(), r, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "Added risk %s (score %d, %s)\n", r.ID, r.Score, r.Level)
				})
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().IntVar(&in.Probability, "probability", 0, "probability 1..5 (default 3)")
	cmd.Flags().IntVar(&in.Impact, "impact", 0, "impact 1..5 (default 3)")
	cmd.Flags().StringVar(&in.Owner, "owner", "", "owner")
	cmd.Flags().StringVar(&in.MitigationPlan, "mitigation", "", "mitigation plan")
	cmd.Flags().StringVar(&in.ReviewDate, "review", "", "review date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.LinkedMilestoneID, "milestone", "", "linked milestone id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func stakeholderCmd() *cobra.Command {
	stakeholder := &cobra.Command{
		Use:   "stakeholder",
		Short: "Stakeholder map",
	}
	var grouped bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stakeholders with their quadrant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				shs := ws.Store.Read().Stakeholders
				out := cmd.OutOrStdout()
				if grouped {
					groups := views.StakeholderQuadrants(shs)
					return printJSONOrTable(out, groups, func() {
						for _, q := range domain.Quadrants {
							fmt.Fprintf(out, "%s (%d)\n", q, len(groups[q]))
							for _, s := range groups[q] {
								fmt.Fprintf(out, "  %s - %s\n", s.Name, s.Role)
							}
						}
					})
				}
				return printJSONOrTable(out, shs, func() {
					tw := newTable(out)
					tw.AppendHeader(table.Row{"ID", "Name", "Role", "Influence", "Interest", "Quadrant", "Cadence"})
					for _, s := range shs {
						tw.AppendRow(table.Row{s.ID, s.Name, s.Role, s.Influence, s.Interest, views.QuadrantFor(s), s.CommunicationCadence})
					}
					tw.Render()
				})
			})
		},
	}
	list.Flags().BoolVar(&grouped, "quadrants", false, "group by quadrant")
	stakeholder.AddCommand(list)

	var in engine.StakeholderInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a stakeholder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.AddStakeholder(p, in)
			}, func(p domain.Project) error {
				s := p.Stakeholders[len(p.Stakeholders)-1]
				return printJSONOrTable(cmd.OutOrStdout(), s, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "Added stakeholder %s (%s)\n", s.ID, views.QuadrantFor(s))
				})
			})
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "name")
	add.Flags().StringVar(&in.Role, "role", "", "role")
	add.Flags().IntVar(&in.Influence, "influence", 0, "influence 1..5 (default 3)")
	add.Flags().IntVar(&in.Interest, "interest", 0, "interest 1..5 (default 3)")
	add.Flags().StringVar(&in.Expectations, "expectations", "", "expectations")
	add.Flags().StringVar(&in.CommunicationCadence, "cadence", "", "communication cadence")
	add.Flags().StringVar(&in.Notes, "notes", "", "notes")
	_ = add.MarkFlagRequired("name")
	stakeholder.AddCommand(add)
	return stakeholder
}

func decisionCmd() *cobra.Command {
	decision := &cobra.Command{
		Use:   "decision",
		Short: "Decision log",
	}
	decision.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List decisions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				ds := ws.Store.Read().Decisions
				out := cmd.OutOrStdout()
				return printJSONOrTable(out, ds, func() {
					tw := newTable(out)
					tw.AppendHeader(table.Row{"ID", "Date", "Title", "Chosen", "Made by"})
					for _, d := range ds {
						tw.AppendRow(table.Row{d.ID, d.Date, d.Title, d.Chosen, d.MadeBy})
					}
					tw.Render()
				})
			})
		},
	})

	var in engine.DecisionInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a decision dated today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, func(e engine.Engine, p domain.Project) (domain.Project, error) {
				return e.AddDecision(p, in)
			}, func(p domain.Project) error {
				d := p.Decisions[0]
				return printJSONOrTable(cmd.OutOrStdout(), d, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded decision %s on %s\n", d.ID, d.Date)
				})
			})
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "title")
	add.Flags().StringVar(&in.Context, "context", "", "context")
	add.Flags().StringVar(&in.Options, "options", "", "options, one per line")
	add.Flags().StringVar(&in.Chosen, "chosen", "", "chosen option")
	add.Flags().StringVar(&in.Rationale, "rationale", "", "rationale")
	add.Flags().StringVar(&in.Impact, "impact", "", "impact")
	add.Flags().StringVar(&in.MadeBy, "made-by", "", "decision maker")
	_ = add.MarkFlagRequired("title")
	decision.AddCommand(add)
	return decision
}

func exportCmd() *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the versioned project document as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				doc := snapshot.Document{
					Version: snapshot.CurrentVersion,
					SavedAt: time.Now().UTC().Format(time.RFC3339),
					Project: ws.Store.Read(),
				}
				var data []byte
				var err error
				switch strings.ToLower(format) {
				case "json":
					data, err = snapshot.Encode(doc.Project, time.Now())
				case "yaml", "yml":
					data, err = yaml.Marshal(doc)
				default:
					return fmt.Errorf("unknown export format %q (json or yaml)", format)
				}
				if err != nil {
					return err
				}
				if outPath == "" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return os.WriteFile(outPath, data, 0o644)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (defaults to stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the project with a JSON document written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := snapshot.Decode(data)
			if err != nil {
				return err
			}
			return withWorkspace(cmd, func(ctx context.Context, ws *app.Workspace) error {
				if err := ws.Store.Replace(ctx, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported project %s\n", p.ID)
				return nil
			})
		},
	}
}
