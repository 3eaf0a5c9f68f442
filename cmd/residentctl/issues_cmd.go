package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/issue"
)

var issuesCmd = &cobra.Command{
	Use:     "issues",
	Short:   "Track maintenance issues",
	GroupID: "data",
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := cli.listIssues(cmd.Context())
		if err != nil {
			return err
		}
		if cli.json {
			views := make([]issueView, 0, len(issues))
			for i := range issues {
				views = append(views, toIssueView(&issues[i]))
			}
			return printJSON(cli.out, views)
		}
		printIssueTable(cli.out, issues)
		return nil
	},
}

var issuesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		is, err := cli.getIssue(cmd.Context(), id)
		if err != nil {
			return err
		}
		return showIssue(is)
	},
}

var issuesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Report an issue as the signed-in admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		str := func(name string) string { v, _ := f.GetString(name); return v }

		is, err := cli.createIssue(cmd.Context(), validation.CreateIssueRequest{
			Title:       str("title"),
			Description: str("description"),
			Priority:    str("priority"),
		}, str("category"), str("unit"))
		if err != nil {
			return err
		}
		return showIssue(is)
	},
}

var issuesStatusCmd = &cobra.Command{
	Use:   "status <id> <pending|in-progress|resolved>",
	Short: "Change the status of an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		is, err := cli.setIssueStatus(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		return showIssue(is)
	},
}

func init() {
	issuesCreateCmd.Flags().String("title", "", "short summary")
	issuesCreateCmd.Flags().String("description", "", "what is wrong")
	issuesCreateCmd.Flags().String("category", "", "category name")
	issuesCreateCmd.Flags().String("priority", "medium", "priority (low, medium, high)")
	issuesCreateCmd.Flags().String("unit", "", "unit number")

	issuesCmd.AddCommand(issuesListCmd)
	issuesCmd.AddCommand(issuesShowCmd)
	issuesCmd.AddCommand(issuesCreateCmd)
	issuesCmd.AddCommand(issuesStatusCmd)
}

func (a *app) listIssues(ctx context.Context) ([]issue.Issue, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.issues.List(ctx)
}

func (a *app) getIssue(ctx context.Context, id uuid.UUID) (*issue.Issue, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.issues.GetByID(ctx, id)
}

func (a *app) createIssue(ctx context.Context, req validation.CreateIssueRequest, category, unit string) (*issue.Issue, error) {
	p, err := a.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateCreateIssueRequest(req); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}

	created, err := a.issues.Create(ctx, issue.NewIssue{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(category),
		Priority:    issue.Priority(req.Priority),
		Unit:        strings.TrimSpace(unit),
		SubmittedBy: &p.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}
	return created, nil
}

func (a *app) setIssueStatus(ctx context.Context, id uuid.UUID, status string) (*issue.Issue, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if errs := validation.ValidateIssueStatus(status); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}
	return a.issues.UpdateStatus(ctx, id, issue.Status(status))
}

func showIssue(is *issue.Issue) error {
	if cli.json {
		return printJSON(cli.out, toIssueView(is))
	}
	printIssue(cli.out, is)
	return nil
}
