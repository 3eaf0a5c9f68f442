package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/resident"
)

// residentExtras are the resident fields that need no validation.
type residentExtras struct {
	EmergencyContactName  *string
	EmergencyContactPhone *string
	Notes                 *string
}

var residentsCmd = &cobra.Command{
	Use:     "residents",
	Short:   "Manage residents",
	GroupID: "data",
}

var residentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List residents, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		query, _ := cmd.Flags().GetString("query")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := resident.ListFilter{Page: page, Limit: limit}
		if status != "" {
			s := resident.Status(status)
			if !s.Valid() {
				return errors.New(`--status must be "active", "inactive" or "pending"`)
			}
			filter.Status = &s
		}
		if q := strings.TrimSpace(query); q != "" {
			filter.Query = &q
		}

		result, err := cli.listResidents(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if cli.json {
			return printJSON(cli.out, toResidentViews(result.Residents))
		}
		printResidentTable(cli.out, result.Residents, result.Total)
		return nil
	},
}

var residentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a resident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := cli.getResident(cmd.Context(), id)
		if err != nil {
			return err
		}
		return showResident(res)
	},
}

var residentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a resident",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		str := func(name string) string { v, _ := f.GetString(name); return v }

		req := validation.CreateResidentRequest{
			FirstName:       str("first-name"),
			LastName:        str("last-name"),
			Email:           str("email"),
			Phone:           str("phone"),
			ApartmentNumber: str("apartment"),
			Building:        str("building"),
			MoveInDate:      str("move-in"),
			MoveOutDate:     changedString(cmd, "move-out"),
			Status:          str("status"),
		}
		res, err := cli.createResident(cmd.Context(), req, extrasFromFlags(cmd))
		if err != nil {
			return err
		}
		return showResident(res)
	},
}

var residentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change some fields of a resident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := validation.UpdateResidentRequest{
			FirstName:       changedString(cmd, "first-name"),
			LastName:        changedString(cmd, "last-name"),
			Email:           changedString(cmd, "email"),
			Phone:           changedString(cmd, "phone"),
			ApartmentNumber: changedString(cmd, "apartment"),
			Building:        changedString(cmd, "building"),
			MoveInDate:      changedString(cmd, "move-in"),
			MoveOutDate:     changedString(cmd, "move-out"),
			Status:          changedString(cmd, "status"),
		}
		res, err := cli.updateResident(cmd.Context(), id, req, extrasFromFlags(cmd))
		if err != nil {
			return err
		}
		return showResident(res)
	},
}

var residentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a resident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := cli.deleteResident(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Deleted resident %s\n", id)
		return nil
	},
}

var residentsSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find residents by name, email or apartment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		residents, err := cli.searchResidents(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if cli.json {
			return printJSON(cli.out, toResidentViews(residents))
		}
		printResidentTable(cli.out, residents, len(residents))
		return nil
	},
}

var residentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show resident counts per status",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := cli.residentStats(cmd.Context())
		if err != nil {
			return err
		}
		if cli.json {
			return printJSON(cli.out, map[string]any{
				"total":    stats.Total,
				"active":   stats.Active,
				"pending":  stats.Pending,
				"inactive": stats.Inactive,
				"recent":   toResidentViews(stats.Recent),
			})
		}
		printStats(cli.out, stats)
		return nil
	},
}

func init() {
	residentsListCmd.Flags().StringP("status", "s", "", "filter by status (active, inactive, pending)")
	residentsListCmd.Flags().StringP("query", "q", "", "match name, email or apartment")
	residentsListCmd.Flags().Int("page", 1, "page number")
	residentsListCmd.Flags().Int("limit", 20, "residents per page (max 100)")

	for _, c := range []*cobra.Command{residentsCreateCmd, residentsUpdateCmd} {
		c.Flags().String("first-name", "", "first name")
		c.Flags().String("last-name", "", "last name")
		c.Flags().String("email", "", "email address")
		c.Flags().String("phone", "", "phone number")
		c.Flags().String("apartment", "", "apartment number")
		c.Flags().String("building", "", "building")
		c.Flags().String("move-in", "", "move-in date (YYYY-MM-DD)")
		c.Flags().String("move-out", "", "move-out date (YYYY-MM-DD)")
		c.Flags().String("emergency-name", "", "emergency contact name")
		c.Flags().String("emergency-phone", "", "emergency contact phone")
		c.Flags().String("notes", "", "free-form notes")
		c.Flags().String("status", "", "status (active, inactive, pending)")
	}

	residentsCmd.AddCommand(residentsListCmd)
	residentsCmd.AddCommand(residentsShowCmd)
	residentsCmd.AddCommand(residentsCreateCmd)
	residentsCmd.AddCommand(residentsUpdateCmd)
	residentsCmd.AddCommand(residentsDeleteCmd)
	residentsCmd.AddCommand(residentsSearchCmd)
	residentsCmd.AddCommand(residentsStatsCmd)
}

func (a *app) listResidents(ctx context.Context, filter resident.ListFilter) (*resident.ListResult, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.residents.List(ctx, filter)
}

func (a *app) getResident(ctx context.Context, id uuid.UUID) (*resident.Resident, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.residents.GetByID(ctx, id)
}

func (a *app) searchResidents(ctx context.Context, query string) ([]resident.Resident, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search text is required")
	}
	return a.residents.Search(ctx, query)
}

func (a *app) residentStats(ctx context.Context) (*resident.Stats, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.residents.Stats(ctx)
}

func (a *app) deleteResident(ctx context.Context, id uuid.UUID) error {
	if _, err := a.requireAdmin(ctx); err != nil {
		return err
	}
	return a.residents.Delete(ctx, id)
}

func (a *app) createResident(ctx context.Context, req validation.CreateResidentRequest, extra residentExtras) (*resident.Resident, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if errs := validation.ValidateCreateResidentRequest(req); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}

	moveIn, _ := validation.ParseDate(req.MoveInDate)
	res := &resident.Resident{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		ApartmentNumber: strings.TrimSpace(req.ApartmentNumber),
		Building:        strings.TrimSpace(req.Building),
		MoveInDate:      moveIn,
		Notes:           extra.Notes,
		Status:          resident.Status(req.Status),
	}
	if extra.EmergencyContactName != nil {
		res.EmergencyContactName = strings.TrimSpace(*extra.EmergencyContactName)
	}
	if extra.EmergencyContactPhone != nil {
		res.EmergencyContactPhone = strings.TrimSpace(*extra.EmergencyContactPhone)
	}
	if req.MoveOutDate != nil && *req.MoveOutDate != "" {
		moveOut, _ := validation.ParseDate(*req.MoveOutDate)
		res.MoveOutDate = &moveOut
	}

	if err := a.residents.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("creating resident: %w", err)
	}
	return res, nil
}

func (a *app) updateResident(ctx context.Context, id uuid.UUID, req validation.UpdateResidentRequest, extra residentExtras) (*resident.Resident, error) {
	if _, err := a.requireAdmin(ctx); err != nil {
		return nil, err
	}

	existing, err := a.residents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateUpdateResidentRequest(req, &existing.MoveInDate, existing.MoveOutDate); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}

	fields := resident.UpdateFields{
		FirstName:             trimmed(req.FirstName),
		LastName:              trimmed(req.LastName),
		Email:                 trimmed(req.Email),
		Phone:                 trimmed(req.Phone),
		ApartmentNumber:       trimmed(req.ApartmentNumber),
		Building:              trimmed(req.Building),
		EmergencyContactName:  trimmed(extra.EmergencyContactName),
		EmergencyContactPhone: trimmed(extra.EmergencyContactPhone),
		Notes:                 extra.Notes,
	}
	if req.MoveInDate != nil {
		d, _ := validation.ParseDate(*req.MoveInDate)
		fields.MoveInDate = &d
	}
	if req.MoveOutDate != nil {
		d, _ := validation.ParseDate(*req.MoveOutDate)
		fields.MoveOutDate = &d
	}
	if req.Status != nil {
		s := resident.Status(*req.Status)
		fields.Status = &s
	}

	return a.residents.Update(ctx, id, fields)
}

func showResident(res *resident.Resident) error {
	if cli.json {
		return printJSON(cli.out, toResidentView(res))
	}
	printResident(cli.out, res)
	return nil
}

func extrasFromFlags(cmd *cobra.Command) residentExtras {
	return residentExtras{
		EmergencyContactName:  changedString(cmd, "emergency-name"),
		EmergencyContactPhone: changedString(cmd, "emergency-phone"),
		Notes:                 changedString(cmd, "notes"),
	}
}

// changedString returns the flag value only when the flag was given.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: must be a UUID", s)
	}
	return id, nil
}

func fieldErrors(errs []validation.FieldError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}
