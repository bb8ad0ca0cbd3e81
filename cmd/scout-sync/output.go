package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/usecase"
)

const dateLayout = "2006-01-02"

type playerView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Nationality    *string `json:"nationality,omitempty"`
	BirthYear      *int    `json:"birth_year,omitempty"`
	Age            *int    `json:"age,omitempty"`
	HeightCM       *int    `json:"height_cm,omitempty"`
	DominantFoot   *string `json:"dominant_foot,omitempty"`
	ExternalID     *string `json:"external_id,omitempty"`
	Club           string  `json:"club,omitempty"`
	League         string  `json:"league,omitempty"`
	Position       string  `json:"position,omitempty"`
	ContractEnd    string  `json:"contract_end,omitempty"`
	ContractStatus string  `json:"contract_status,omitempty"`
}

type alertView struct {
	ID          int64     `json:"id"`
	PlayerID    int64     `json:"player_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPlayerView(p player.Profile) playerView {
	view := playerView{
		ID:          p.Player.ID,
		Name:        p.Player.Name,
		Nationality: p.Player.Nationality,
		BirthYear:   p.Player.BirthYear,
		Age:         p.Player.Age,
		HeightCM:    p.Player.HeightCM,
		ExternalID:  p.Player.ExternalID,
	}
	if p.Player.DominantFoot != nil {
		foot := string(*p.Player.DominantFoot)
		view.DominantFoot = &foot
	}
	if link := p.ClubLink; link != nil {
		view.Club = link.Club
		view.League = link.League
		view.Position = link.Position
		view.ContractStatus = string(link.ContractStatus)
		if link.ContractEnd != nil {
			view.ContractEnd = link.ContractEnd.Format(dateLayout)
		}
	}
	return view
}

func toAlertView(a alert.Alert) alertView {
	return alertView{
		ID:          a.ID,
		PlayerID:    a.PlayerID,
		Type:        a.Type,
		Description: a.Description,
		Priority:    string(a.Priority),
		CreatedAt:   a.CreatedAt,
	}
}

func (r *runner) printJSON(v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(out))
	return err
}

func (r *runner) printReport(report usecase.SyncReport, asJSON bool) error {
	if asJSON {
		return r.printJSON(report)
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", report.RunID)
	fmt.Fprintf(tw, "source\t%s\n", report.Source)
	fmt.Fprintf(tw, "state\t%s\n", report.State)
	if report.DryRun {
		fmt.Fprintf(tw, "dry run\tyes\n")
	}
	fmt.Fprintf(tw, "rows\t%d seen, %d processed\n", report.RowsSeen, report.Processed)
	fmt.Fprintf(tw, "created\t%d\n", report.Created)
	fmt.Fprintf(tw, "updated\t%d\n", report.Updated)
	fmt.Fprintf(tw, "skipped\t%d\n", report.SkippedInvalid)
	fmt.Fprintf(tw, "alerts\t%d\n", report.AlertsCreated)
	fmt.Fprintf(tw, "cache invalidated\t%t\n", report.CacheInvalidated)
	fmt.Fprintf(tw, "duration\t%s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	if report.FailureReason != "" {
		fmt.Fprintf(tw, "failure\t%s\n", report.FailureReason)
	}
	fmt.Fprintf(tw, "errors\t%d\n", len(report.Errors))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, line := range report.Errors {
		fmt.Fprintf(r.out, "  - %s\n", line)
	}
	return nil
}

func (r *runner) printPlayers(profiles []player.Profile, asJSON bool) error {
	views := make([]playerView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, toPlayerView(p))
	}
	if asJSON {
		return r.printJSON(views)
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCLUB\tCONTRACT END\tSTATUS\tEXTERNAL ID")
	for _, v := range views {
		externalID := "-"
		if v.ExternalID != nil {
			externalID = *v.ExternalID
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, dashIfEmpty(v.Club), dashIfEmpty(v.ContractEnd), dashIfEmpty(v.ContractStatus), externalID)
	}
	return tw.Flush()
}

func (r *runner) printAlerts(alerts []alert.Alert, asJSON bool) error {
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, toAlertView(a))
	}
	if asJSON {
		return r.printJSON(views)
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLAYER\tTYPE\tPRIORITY\tDESCRIPTION\tCREATED")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			v.ID, v.PlayerID, v.Type, v.Priority, v.Description, v.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
