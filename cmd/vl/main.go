package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"villainlair/internal/app"
	"villainlair/internal/db"
	"villainlair/internal/domain"
	"villainlair/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "vl",
	Short: "Villain Lair CLI",
	Long: `Villain Lair manages an evil organization: minions, schemes, bases and gear.
Core concepts:
- Workspace: your .villainlair directory holding the database; tune the rules with villainlair.yml.
- Minions: henchmen with a specialty, a skill level and a loyalty score that moves with their pay.
- Schemes: plots with a budget, a deadline and a status machine (Planning -> Active -> Completed/Failed, with On Hold detours).
- Success likelihood: a derived score from crew, gear, budget and deadline; refresh it before bragging.
- Equipment: wears down while assigned to active schemes; maintenance restores it for a cut of the purchase price.
- Bases: house minions and store equipment; once discovered, evacuate fast.
- Event log: diary of changes, view with 'vl log tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("VILLAINLAIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(minionCmd())
	rootCmd.AddCommand(schemeCmd())
	rootCmd.AddCommand(equipmentCmd())
	rootCmd.AddCommand(baseCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the lair workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			lair, err := app.Open(cmd.Context(), app.Options{
				Workspace: viper.GetString("workspace"),
				Seed:      seed,
			})
			if err != nil {
				return err
			}
			defer lair.Close()
			minions, err := lair.Repo.GetAllMinions(cmd.Context())
			if err != nil {
				return err
			}
			schemes, err := lair.Repo.GetAllSchemes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Lair ready at %s (%d minions, %d schemes)\n",
				db.Path(viper.GetString("workspace")), len(minions), len(schemes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed the demo lair when empty")
	return cmd
}

func minionCmd() *cobra.Command {
	m := &cobra.Command{Use: "minion", Short: "Manage minions"}
	m.AddCommand(minionListCmd())
	m.AddCommand(minionShowCmd())
	m.AddCommand(minionHireCmd())
	m.AddCommand(minionPayCmd())
	m.AddCommand(minionMoodCmd())
	m.AddCommand(minionAssignSchemeCmd())
	m.AddCommand(minionUnassignSchemeCmd())
	m.AddCommand(minionAssignBaseCmd())
	m.AddCommand(minionFireCmd())
	return m
}

func minionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List minions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				minions, err := lair.Repo.GetAllMinions(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(minions)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Specialty", "Skill", "Loyalty", "Mood", "Scheme", "Base"})
				for _, m := range minions {
					tw.AppendRow(table.Row{m.ID, m.Name, m.Specialty, m.SkillLevel, m.LoyaltyScore, m.MoodStatus, idOrDash(m.CurrentSchemeID), idOrDash(m.CurrentBaseID)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func minionShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a minion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				m, err := lair.Repo.GetMinionByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func minionHireCmd() *cobra.Command {
	var m domain.Minion
	cmd := &cobra.Command{
		Use:   "hire",
		Short: "Recruit a minion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				hired, warnings, err := lair.Minions.CreateMinion(ctx, m)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				return printJSONOrTable(hired)
			})
		},
	}
	cmd.Flags().StringVar(&m.Name, "name", "", "minion name")
	cmd.Flags().IntVar(&m.SkillLevel, "skill", 1, "skill level (1-10)")
	cmd.Flags().StringVar(&m.Specialty, "specialty", "", "specialty")
	cmd.Flags().IntVar(&m.LoyaltyScore, "loyalty", 50, "initial loyalty (0-100)")
	cmd.Flags().Float64Var(&m.SalaryDemand, "salary", 0, "salary demand")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("specialty")
	_ = cmd.MarkFlagRequired("salary")
	return cmd
}

func minionPayCmd() *cobra.Command {
	var amount float64
	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Pay a minion and update loyalty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				m, err := lair.Minions.UpdateLoyalty(ctx, id, amount)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount paid")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func minionMoodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mood <id>",
		Short: "Recompute a minion's mood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				m, err := lair.Minions.UpdateMood(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func minionAssignSchemeCmd() *cobra.Command {
	var schemeID int64
	cmd := &cobra.Command{
		Use:   "assign-scheme <id>",
		Short: "Assign minion to a scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				if err := lair.Minions.AssignMinionToScheme(ctx, id, schemeID); err != nil {
					return err
				}
				m, err := lair.Repo.GetMinionByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().Int64Var(&schemeID, "scheme", 0, "scheme id")
	_ = cmd.MarkFlagRequired("scheme")
	return cmd
}

func minionUnassignSchemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign-scheme <id>",
		Short: "Pull a minion off its scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Minions.UnassignMinionFromScheme(ctx, id)
			})
		},
	}
	return cmd
}

func minionAssignBaseCmd() *cobra.Command {
	var baseID int64
	cmd := &cobra.Command{
		Use:   "assign-base <id>",
		Short: "Station a minion at a base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				if err := lair.Minions.AssignMinionToBase(ctx, id, baseID); err != nil {
					return err
				}
				m, err := lair.Repo.GetMinionByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().Int64Var(&baseID, "base", 0, "base id")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

func minionFireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fire <id>",
		Short: "Fire a minion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Minions.DeleteMinion(ctx, id)
			})
		},
	}
	return cmd
}

func schemeCmd() *cobra.Command {
	s := &cobra.Command{Use: "scheme", Short: "Manage evil schemes"}
	s.AddCommand(schemeListCmd())
	s.AddCommand(schemeShowCmd())
	s.AddCommand(schemePlotCmd())
	s.AddCommand(schemeSuccessCmd())
	s.AddCommand(schemeBudgetCmd())
	s.AddCommand(schemeDeadlineCmd())
	s.AddCommand(schemeRequirementsCmd())
	s.AddCommand(schemeSpecialistsCmd())
	s.AddCommand(schemeEstimateCmd())
	s.AddCommand(schemeTransitionCmd())
	s.AddCommand(schemeSweepCmd())
	return s
}

func schemeListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schemes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				schemes, err := lair.Repo.GetAllSchemes(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(schemes)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Budget", "Spending", "Success", "Deadline"})
				for _, s := range schemes {
					tw.AppendRow(table.Row{s.ID, s.Name, s.Status,
						fmt.Sprintf("%.0f", s.Budget), fmt.Sprintf("%.0f", s.CurrentSpending),
						fmt.Sprintf("%d%%", s.SuccessLikelihood), s.TargetCompletionDate})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func schemeShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				s, err := lair.Repo.GetSchemeByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	return cmd
}

func schemePlotCmd() *cobra.Command {
	var s domain.EvilScheme
	var start string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a new scheme",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" {
				s.StartDate = &start
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				created, warnings, err := lair.Schemes.CreateScheme(ctx, s)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&s.Name, "name", "", "scheme name")
	cmd.Flags().StringVar(&s.Description, "description", "", "description")
	cmd.Flags().Float64Var(&s.Budget, "budget", 0, "budget in evil dollars")
	cmd.Flags().IntVar(&s.RequiredSkillLevel, "skill", 1, "required skill level")
	cmd.Flags().StringVar(&s.RequiredSpecialty, "specialty", "", "required specialty")
	cmd.Flags().StringVar(&start, "start", "", "start date (RFC3339)")
	cmd.Flags().StringVar(&s.TargetCompletionDate, "deadline", "", "target completion date (RFC3339)")
	cmd.Flags().IntVar(&s.DiabolicalRating, "rating", 1, "diabolical rating (1-10)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("budget")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func schemeSuccessCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "success <id>",
		Short: "Success likelihood, optionally persisted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				var score int
				if refresh {
					score, err = lair.Schemes.UpdateSuccessLikelihood(ctx, id)
				} else {
					score, err = lair.Schemes.CalculateSuccessLikelihood(ctx, id)
				}
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]int{"success_likelihood": score})
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "persist the recomputed score")
	return cmd
}

func schemeBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget <id>",
		Short: "Budget health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				status, allow, err := lair.Schemes.ValidateBudgetStatus(ctx, id)
				if err != nil {
					return err
				}
				remaining, err := lair.Schemes.RemainingBudget(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{
					"status":                status,
					"allow_new_assignments": allow,
					"remaining":             remaining,
				})
			})
		},
	}
	return cmd
}

func schemeDeadlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadline <id>",
		Short: "Deadline urgency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				status, err := lair.Schemes.GetDeadlineStatus(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]string{"status": status})
			})
		},
	}
	return cmd
}

func schemeRequirementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requirements <id>",
		Short: "Resource requirements vs assigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				minionCount, err := lair.Repo.GetSchemeAssignedMinionsCount(ctx, id)
				if err != nil {
					return err
				}
				equipmentCount, err := lair.Repo.GetSchemeAssignedEquipmentCount(ctx, id)
				if err != nil {
					return err
				}
				hasDoomsday := false
				for _, e := range lair.Store.SchemeEquipment(id) {
					if e.Category == domain.CategoryDoomsday {
						hasDoomsday = true
					}
				}
				met, warnings, err := lair.Schemes.ValidateResourceRequirements(ctx, id, minionCount, equipmentCount, hasDoomsday)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				return printJSONOrTable(map[string]any{
					"ok":              met,
					"minion_count":    minionCount,
					"equipment_count": equipmentCount,
					"has_doomsday":    hasDoomsday,
				})
			})
		},
	}
	return cmd
}

func schemeSpecialistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specialists <id>",
		Short: "Specialty coverage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				ok, matching, warnings, err := lair.Schemes.ValidateSpecialtyMatching(ctx, id)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				return printJSONOrTable(map[string]any{"ok": ok, "matching_minions": matching})
			})
		},
	}
	return cmd
}

func schemeEstimateCmd() *cobra.Command {
	var minionID int64
	cmd := &cobra.Command{
		Use:   "estimate <id>",
		Short: "Project the cost of assigning a minion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				candidate, err := lair.Repo.GetMinionByID(ctx, minionID)
				if err != nil {
					return err
				}
				added, total, exceed, err := lair.Schemes.CalculateEstimatedSpending(ctx, id, candidate)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{
					"added_cost":   added,
					"new_total":    total,
					"would_exceed": exceed,
				})
			})
		},
	}
	cmd.Flags().Int64Var(&minionID, "minion", 0, "candidate minion id")
	_ = cmd.MarkFlagRequired("minion")
	return cmd
}

func schemeTransitionCmd() *cobra.Command {
	var target string
	var check bool
	cmd := &cobra.Command{
		Use:   "transition <id>",
		Short: "Apply or check a status transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				if check {
					ok, errs, err := lair.Schemes.CanTransitionToStatus(ctx, id, target)
					if err != nil {
						return err
					}
					return printJSONOrTable(map[string]any{"ok": ok, "errors": errs})
				}
				if err := lair.Schemes.TransitionToStatus(ctx, id, target); err != nil {
					return err
				}
				s, err := lair.Repo.GetSchemeByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "target status")
	cmd.Flags().BoolVar(&check, "check", false, "validate only, do not apply")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func schemeSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Auto-complete or auto-fail overdue active schemes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				schemes, err := lair.Repo.GetAllSchemes(ctx)
				if err != nil {
					return err
				}
				swept := 0
				for _, s := range schemes {
					before := s.Status
					if err := lair.Schemes.ApplyAutoTransitions(ctx, s.ID); err != nil {
						return err
					}
					after, err := lair.Repo.GetSchemeByID(ctx, s.ID)
					if err != nil {
						return err
					}
					if after.Status != before {
						swept++
						fmt.Printf("Scheme %d: %s -> %s\n", s.ID, before, after.Status)
					}
				}
				fmt.Printf("%d scheme(s) transitioned\n", swept)
				return nil
			})
		},
	}
	return cmd
}

func equipmentCmd() *cobra.Command {
	e := &cobra.Command{Use: "equipment", Short: "Manage equipment"}
	e.AddCommand(equipmentListCmd())
	e.AddCommand(equipmentShowCmd())
	e.AddCommand(equipmentAddCmd())
	e.AddCommand(equipmentMaintainCmd())
	e.AddCommand(equipmentDegradeCmd())
	e.AddCommand(equipmentCheckCmd())
	e.AddCommand(equipmentAssignCmd())
	e.AddCommand(equipmentUnassignCmd())
	e.AddCommand(equipmentScrapCmd())
	return e
}

func equipmentListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List equipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				items, err := lair.Repo.GetAllEquipment(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Category", "Condition", "Scheme", "Base"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.ID, e.Name, e.Category, fmt.Sprintf("%d%%", e.Condition), idOrDash(e.AssignedSchemeID), idOrDash(e.StoredBaseID)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func equipmentShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				e, err := lair.Repo.GetEquipmentByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			})
		},
	}
	return cmd
}

func equipmentAddCmd() *cobra.Command {
	var e domain.Equipment
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Acquire equipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				added, warnings, err := lair.Equipment.AddEquipment(ctx, e)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				return printJSONOrTable(added)
			})
		},
	}
	cmd.Flags().StringVar(&e.Name, "name", "", "equipment name")
	cmd.Flags().StringVar(&e.Category, "category", "", "category")
	cmd.Flags().IntVar(&e.Condition, "condition", 100, "condition (0-100)")
	cmd.Flags().Float64Var(&e.PurchasePrice, "price", 0, "purchase price")
	cmd.Flags().Float64Var(&e.MaintenanceCost, "maintenance", 0, "monthly maintenance cost")
	cmd.Flags().BoolVar(&e.RequiresSpecialist, "specialist", false, "requires a specialist operator")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func equipmentMaintainCmd() *cobra.Command {
	var funds float64
	cmd := &cobra.Command{
		Use:   "maintain <id>",
		Short: "Perform maintenance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				cost, err := lair.Equipment.PerformMaintenance(ctx, id, funds)
				if err != nil {
					return err
				}
				e, err := lair.Repo.GetEquipmentByID(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("Maintenance cost: %.2f\n", cost)
				return printJSONOrTable(e)
			})
		},
	}
	cmd.Flags().Float64Var(&funds, "funds", 0, "available funds")
	_ = cmd.MarkFlagRequired("funds")
	return cmd
}

func equipmentDegradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "degrade <id>",
		Short: "Apply time-based wear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				e, err := lair.Equipment.DegradeCondition(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			})
		},
	}
	return cmd
}

func equipmentCheckCmd() *cobra.Command {
	var schemeID int64
	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Check an equipment-to-scheme assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				ok, message, warnings, err := lair.Equipment.ValidateAssignment(ctx, id, schemeID)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				return printJSONOrTable(map[string]any{"ok": ok, "message": message})
			})
		},
	}
	cmd.Flags().Int64Var(&schemeID, "scheme", 0, "scheme id")
	_ = cmd.MarkFlagRequired("scheme")
	return cmd
}

func equipmentAssignCmd() *cobra.Command {
	var schemeID int64
	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign equipment to a scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				warnings, err := lair.Equipment.AssignEquipmentToScheme(ctx, id, schemeID)
				if err != nil {
					return err
				}
				printWarnings(warnings)
				e, err := lair.Repo.GetEquipmentByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			})
		},
	}
	cmd.Flags().Int64Var(&schemeID, "scheme", 0, "scheme id")
	_ = cmd.MarkFlagRequired("scheme")
	return cmd
}

func equipmentUnassignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign <id>",
		Short: "Pull equipment off its scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Equipment.UnassignEquipment(ctx, id)
			})
		},
	}
	return cmd
}

func equipmentScrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrap <id>",
		Short: "Scrap equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Equipment.DeleteEquipment(ctx, id)
			})
		},
	}
	return cmd
}

func baseCmd() *cobra.Command {
	b := &cobra.Command{Use: "base", Short: "Manage secret bases"}
	b.AddCommand(baseListCmd())
	b.AddCommand(baseShowCmd())
	b.AddCommand(baseSecurityCmd())
	b.AddCommand(baseDiscoveredCmd())
	b.AddCommand(baseSecuredCmd())
	b.AddCommand(baseStationCmd())
	b.AddCommand(baseStoreCmd())
	b.AddCommand(baseStorageCmd())
	b.AddCommand(baseCostsCmd())
	b.AddCommand(baseSummaryCmd())
	return b
}

func baseListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				bases, err := lair.Repo.GetAllBases(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(bases)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Location", "Capacity", "Security", "Discovered"})
				for _, b := range bases {
					tw.AppendRow(table.Row{b.ID, b.Name, b.Location, b.Capacity, b.SecurityLevel, b.IsDiscovered})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func baseShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				b, err := lair.Repo.GetBaseByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(b)
			})
		},
	}
	return cmd
}

func baseSecurityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security <id>",
		Short: "Discovery and security status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				status, err := lair.Bases.SecurityStatus(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]string{"status": status})
			})
		},
	}
	return cmd
}

func baseDiscoveredCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "discovered <id>",
		Short: "Record that the base was discovered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			when := time.Now().UTC()
			if date != "" {
				when, err = time.Parse(time.RFC3339, date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Bases.MarkDiscovered(ctx, id, when)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "discovery date (RFC3339, defaults to now)")
	return cmd
}

func baseSecuredCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secured <id>",
		Short: "Clear the discovery flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Bases.MarkSafe(ctx, id)
			})
		},
	}
	return cmd
}

func baseStationCmd() *cobra.Command {
	var minionIDs []int64
	cmd := &cobra.Command{
		Use:   "station <id>",
		Short: "Station a group of minions, all or nothing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				if err := lair.Minions.AssignMinionsToBase(ctx, minionIDs, id); err != nil {
					return err
				}
				occupancy, err := lair.Bases.CurrentOccupancy(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("Base %d occupancy: %d\n", id, occupancy)
				return nil
			})
		},
	}
	cmd.Flags().Int64SliceVar(&minionIDs, "minions", nil, "minion ids (comma-separated)")
	_ = cmd.MarkFlagRequired("minions")
	return cmd
}

func baseStoreCmd() *cobra.Command {
	var equipmentID int64
	cmd := &cobra.Command{
		Use:   "store <id>",
		Short: "Store equipment at the base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				return lair.Bases.StoreEquipment(ctx, id, equipmentID)
			})
		},
	}
	cmd.Flags().Int64Var(&equipmentID, "equipment", 0, "equipment id")
	_ = cmd.MarkFlagRequired("equipment")
	return cmd
}

func baseStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage <id>",
		Short: "Stored equipment and remaining space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				items, err := lair.Bases.StoredEquipment(ctx, id)
				if err != nil {
					return err
				}
				space, err := lair.Bases.AvailableStorageSpace(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{"equipment": items, "available_space": space})
			})
		},
	}
	return cmd
}

func baseCostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costs <id>",
		Short: "Monthly running costs and trend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				monthly, err := lair.Bases.MonthlyCosts(ctx, id)
				if err != nil {
					return err
				}
				trend, err := lair.Bases.CostTrend(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{"monthly": monthly, "trend": trend})
			})
		},
	}
	return cmd
}

func baseSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <id>",
		Short: "Multi-line base report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				summary, err := lair.Bases.Summary(ctx, id)
				if err != nil {
					return err
				}
				fmt.Println(summary)
				return nil
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "The diary of everything that happened: loyalty updates, status changes, maintenance and more.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind string
	var entityID int64
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLair(cmd.Context(), func(ctx context.Context, lair *app.Lair) error {
				evts, err := lair.Repo.LatestEvents(ctx, n, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSONOrTable(evts)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().Int64Var(&entityID, "entity-id", 0, "entity id")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var devLogin bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			lair, err := app.Open(cmd.Context(), app.Options{Workspace: viper.GetString("workspace")})
			if err != nil {
				return err
			}
			defer lair.Close()
			authCfg := server.AuthConfig{
				JWTSecret:     os.Getenv("VILLAINLAIR_JWT_SECRET"),
				AllowDevLogin: devLogin,
			}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("VILLAINLAIR_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Lair: lair, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Villain Lair API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&devLogin, "dev-login", false, "expose POST /auth/dev/login")
	return cmd
}

// --- helpers ---

func withLair(ctx context.Context, fn func(context.Context, *app.Lair) error) error {
	lair, err := app.Open(ctx, app.Options{Workspace: viper.GetString("workspace")})
	if err != nil {
		return err
	}
	defer lair.Close()
	return fn(ctx, lair)
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Println("warning:", w)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func idOrDash(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}
