package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/laurel/internal/adapters/export"
	service "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/domain/model"
)

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <document|event> <id>",
		Short: "Analyze one content item and update its criteria",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseContentKind(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.AnalyzeSingleContent(ctx, kind, args[1])
			})
		},
	}
}

func newAnalyzeAllCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze-all",
		Short: "Analyze every active content item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.AnalyzeAllContent(ctx)
			})
		},
	}
}

func newReadinessCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "readiness",
		Short: "Show the readiness of every award",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.GetReadinessSummary(ctx)
			})
		},
	}
}

func newChecklistCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "checklist [award]",
		Short: "Show one award checklist, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				if len(args) == 1 {
					return svc.GetAwardChecklist(ctx, args[0])
				}
				return svc.GetAllChecklists(ctx)
			})
		},
	}
}

// parseSatisfied accepts the same spellings as the HTTP API.
func parseSatisfied(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("satisfied must be true/false or 1/0, got %q", s)
	}
	return v, nil
}

func newOverrideCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "override <award> <criterion> <true|false>",
		Short: "Manually set a criterion, overriding automatic matching",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			satisfied, err := parseSatisfied(args[2])
			if err != nil {
				return err
			}
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.UpdateCriterionStatus(ctx, args[0], args[1], satisfied)
			})
		},
	}
}

func newClearOverrideCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-override <award> <criterion>",
		Short: "Return a criterion to automatic matching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.ClearOverride(ctx, args[0], args[1])
			})
		},
	}
}

func newStateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "state <award> <criterion>",
		Short: "Show the stored record of one criterion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.GetCriterionState(ctx, args[0], args[1])
			})
		},
	}
}

func newReportCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show missing and satisfied criteria of every award",
		Long:  "Without --format prints the missing criteria report. With --format csv or json prints the export table: readiness, missing criteria and the top three matches of every award.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
					return svc.GetMissingCriteriaReport(ctx)
				})
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return runService(cmd, g, func(ctx context.Context, svc *service.Service) error {
				lists, err := svc.GetAllChecklists(ctx)
				if err != nil {
					return err
				}
				rows := export.Rows(lists)
				if f == export.FormatJSON {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				return export.WriteCSV(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "export format: csv or json")
	return cmd
}

func newSuggestionsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "suggestions <award>",
		Short: "Suggest content for the unsatisfied criteria of an award",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.GetMissingContentSuggestions(ctx, args[0])
			})
		},
	}
}
