package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/application/orchestrators"
)

const adminUsage = `usage: sproom admin <subcommand>

  create-activity [flags]                create an activity
  update-activity <id> [flags]           update an activity
  delete-activity <id>                   delete an activity
  registrations <activity-id>            list an activity's registrations
  confirm <registration-id>              confirm a pending registration
  unconfirm <registration-id>            move a registration back to pending
  remove-registration <registration-id>  remove someone's registration
`

func (a *app) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Print(adminUsage)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create-activity":
		return a.adminSaveActivity(ctx, 0, rest)
	case "update-activity":
		id, err := parseID(rest, "usage: sproom admin update-activity <id> [flags]")
		if err != nil {
			return err
		}
		return a.adminSaveActivity(ctx, id, rest[1:])
	case "delete-activity":
		id, err := parseID(rest, "usage: sproom admin delete-activity <id>")
		if err != nil {
			return err
		}
		return orchestrators.ExecuteDeleteActivity(ctx, id, orchestrators.DeleteActivityDeps{
			Gateway:   a.client,
			Refresher: a.coord,
			Notifier:  a.term,
			Confirmer: a.term,
			Session:   a.holder.Current(),
		})
	case "registrations":
		return a.adminListRegistrations(ctx, rest)
	case "confirm", "unconfirm":
		id, err := parseID(rest, "usage: sproom admin "+cmd+" <registration-id>")
		if err != nil {
			return err
		}
		status := "CONFIRMED"
		if cmd == "unconfirm" {
			status = "PENDING"
		}
		return orchestrators.ExecuteSetRegistrationStatus(ctx, id, status, a.adminRegDeps())
	case "remove-registration":
		id, err := parseID(rest, "usage: sproom admin remove-registration <registration-id>")
		if err != nil {
			return err
		}
		return orchestrators.ExecuteRemoveRegistration(ctx, id, a.adminRegDeps())
	default:
		return fmt.Errorf("unknown admin subcommand %q", cmd)
	}
}

func (a *app) adminRegDeps() orchestrators.RegistrationAdminDeps {
	return orchestrators.RegistrationAdminDeps{
		Gateway:   a.client,
		Refresher: a.coord,
		Notifier:  a.term,
		Confirmer: a.term,
		Session:   a.holder.Current(),
	}
}

func (a *app) adminSaveActivity(ctx context.Context, id int64, args []string) error {
	fs := flag.NewFlagSet("activity", flag.ContinueOnError)
	name := fs.String("name", "", "activity name")
	description := fs.String("description", "", "description, markdown allowed")
	location := fs.String("location", "", "location")
	imageURL := fs.String("image-url", "", "image URL")
	actType := fs.String("type", "", "workshop, seminar, competition, social or other")
	start := fs.String("start", "", "start time, RFC 3339")
	end := fs.String("end", "", "end time, RFC 3339")
	maxPart := fs.Int("max", 0, "max participants, 0 for unlimited")
	status := fs.String("status", "", "lifecycle status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := gateway.ActivityInput{
		Name:        strings.TrimSpace(*name),
		Description: *description,
		Location:    *location,
		ImageURL:    *imageURL,
		Type:        *actType,
		Status:      *status,
	}
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}
		input.StartTime = t
	}
	if *end != "" {
		t, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			return fmt.Errorf("invalid -end: %w", err)
		}
		input.EndTime = t
	}
	if *maxPart > 0 {
		input.MaxParticipants = maxPart
	}

	_, err := orchestrators.ExecuteSaveActivity(ctx, orchestrators.SaveActivityInput{
		ActivityID: id,
		Fields:     input,
	}, orchestrators.SaveActivityDeps{
		Gateway:   a.client,
		Refresher: a.coord,
		Notifier:  a.term,
		Session:   a.holder.Current(),
	})
	return err
}

func (a *app) adminListRegistrations(ctx context.Context, args []string) error {
	activityID, err := parseID(args, "usage: sproom admin registrations <activity-id>")
	if err != nil {
		return err
	}
	regs, err := orchestrators.ExecuteListActivityRegistrations(ctx, activityID, a.adminRegDeps())
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		fmt.Println("no registrations")
		return nil
	}
	for _, reg := range regs {
		fmt.Printf("%4d  user %-6d  %-10s  %s\n",
			reg.ID, reg.UserID, registrationStatusLabel(reg.Status), reg.CreatedAt.Local().Format("Jan 2 15:04"))
	}
	return nil
}
