package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/issue"
	"github.com/residentdesk/residentdesk/internal/resident"
	"github.com/residentdesk/residentdesk/internal/session"
)

const displayTime = "2006-01-02 15:04:05"

type profileView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

type residentView struct {
	ID                    string  `json:"id"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone"`
	ApartmentNumber       string  `json:"apartmentNumber"`
	Building              string  `json:"building"`
	MoveInDate            string  `json:"moveInDate"`
	MoveOutDate           *string `json:"moveOutDate"`
	EmergencyContactName  string  `json:"emergencyContactName"`
	EmergencyContactPhone string  `json:"emergencyContactPhone"`
	Notes                 *string `json:"notes"`
	Status                string  `json:"status"`
}

type issueView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	SubmittedBy string  `json:"submittedBy"`
	Unit        string  `json:"unit"`
	CreatedAt   string  `json:"createdAt"`
	ResolvedAt  *string `json:"resolvedAt"`
}

func toProfileView(p *session.Profile) profileView {
	return profileView{
		ID:       p.ID.String(),
		Email:    p.Email,
		Role:     string(p.Role),
		FullName: p.FullName,
	}
}

func toResidentView(r *resident.Resident) residentView {
	v := residentView{
		ID:                    r.ID.String(),
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		Phone:                 r.Phone,
		ApartmentNumber:       r.ApartmentNumber,
		Building:              r.Building,
		MoveInDate:            r.MoveInDate.Format(validation.DateLayout),
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
		Notes:                 r.Notes,
		Status:                string(r.Status),
	}
	if r.MoveOutDate != nil {
		d := r.MoveOutDate.Format(validation.DateLayout)
		v.MoveOutDate = &d
	}
	return v
}

func toResidentViews(rs []resident.Resident) []residentView {
	out := make([]residentView, 0, len(rs))
	for i := range rs {
		out = append(out, toResidentView(&rs[i]))
	}
	return out
}

func toIssueView(is *issue.Issue) issueView {
	v := issueView{
		ID:          is.ID.String(),
		Title:       is.Title,
		Description: is.Description,
		Category:    is.Category,
		Priority:    string(is.Priority),
		Status:      string(is.Status),
		SubmittedBy: is.SubmittedBy,
		Unit:        is.Unit,
		CreatedAt:   is.CreatedAt.Format(time.RFC3339),
	}
	if is.ResolvedAt != nil {
		t := is.ResolvedAt.Format(time.RFC3339)
		v.ResolvedAt = &t
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printProfile(w io.Writer, p *session.Profile) {
	fmt.Fprintf(w, "ID:        %s\n", p.ID)
	fmt.Fprintf(w, "Email:     %s\n", p.Email)
	fmt.Fprintf(w, "Role:      %s\n", p.Role)
	if p.FullName != "" {
		fmt.Fprintf(w, "Name:      %s\n", p.FullName)
	}
}

func printState(w io.Writer, st session.State) {
	switch {
	case st.Loading:
		fmt.Fprintln(w, "checking session...")
	case st.Authenticated():
		fmt.Fprintf(w, "signed in as %s (%s), session expires %s\n",
			st.Profile.Email, st.Profile.Role, st.Session.ExpiresAt.Local().Format(displayTime))
	default:
		fmt.Fprintln(w, "signed out")
	}
}

func printResident(w io.Writer, r *resident.Resident) {
	fmt.Fprintf(w, "ID:         %s\n", r.ID)
	fmt.Fprintf(w, "Name:       %s %s\n", r.FirstName, r.LastName)
	fmt.Fprintf(w, "Email:      %s\n", r.Email)
	fmt.Fprintf(w, "Phone:      %s\n", r.Phone)
	fmt.Fprintf(w, "Apartment:  %s, %s\n", r.ApartmentNumber, r.Building)
	fmt.Fprintf(w, "Status:     %s\n", r.Status)
	fmt.Fprintf(w, "Move in:    %s\n", r.MoveInDate.Format(validation.DateLayout))
	if r.MoveOutDate != nil {
		fmt.Fprintf(w, "Move out:   %s\n", r.MoveOutDate.Format(validation.DateLayout))
	}
	if r.EmergencyContactName != "" {
		fmt.Fprintf(w, "Emergency:  %s %s\n", r.EmergencyContactName, r.EmergencyContactPhone)
	}
	if r.Notes != nil && *r.Notes != "" {
		fmt.Fprintf(w, "Notes:      %s\n", *r.Notes)
	}
}

func printResidentTable(w io.Writer, rs []resident.Resident, total int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAPARTMENT\tBUILDING\tSTATUS\tMOVE IN")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\n",
			r.ID, r.FirstName, r.LastName, r.ApartmentNumber, r.Building, r.Status,
			r.MoveInDate.Format(validation.DateLayout))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d of %d residents\n", len(rs), total)
}

func printStats(w io.Writer, s *resident.Stats) {
	fmt.Fprintf(w, "Total:     %d\n", s.Total)
	fmt.Fprintf(w, "Active:    %d\n", s.Active)
	fmt.Fprintf(w, "Pending:   %d\n", s.Pending)
	fmt.Fprintf(w, "Inactive:  %d\n", s.Inactive)
	if len(s.Recent) > 0 {
		fmt.Fprintln(w, "\nRecently added:")
		printResidentTable(w, s.Recent, s.Total)
	}
}

func printIssue(w io.Writer, is *issue.Issue) {
	fmt.Fprintf(w, "ID:           %s\n", is.ID)
	fmt.Fprintf(w, "Title:        %s\n", is.Title)
	fmt.Fprintf(w, "Category:     %s\n", is.Category)
	fmt.Fprintf(w, "Priority:     %s\n", is.Priority)
	fmt.Fprintf(w, "Status:       %s\n", is.Status)
	fmt.Fprintf(w, "Unit:         %s\n", is.Unit)
	fmt.Fprintf(w, "Submitted by: %s\n", is.SubmittedBy)
	fmt.Fprintf(w, "Created at:   %s\n", is.CreatedAt.Local().Format(displayTime))
	if is.ResolvedAt != nil {
		fmt.Fprintf(w, "Resolved at:  %s\n", is.ResolvedAt.Local().Format(displayTime))
	}
	fmt.Fprintf(w, "\n%s\n", is.Description)
}

func printIssueTable(w io.Writer, issues []issue.Issue) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tCATEGORY\tUNIT\tTITLE")
	for _, is := range issues {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			is.ID, is.Status, is.Priority, is.Category, is.Unit, is.Title)
	}
	tw.Flush()
}
