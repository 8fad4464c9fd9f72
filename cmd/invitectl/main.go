package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atiapp/inviteboard/internal/assign"
	"github.com/atiapp/inviteboard/internal/client"
	"github.com/atiapp/inviteboard/internal/conflict"
	"github.com/atiapp/inviteboard/internal/model"
)

// terminalDecider asks the operator whether to keep going despite a conflict
// verdict.
type terminalDecider struct{}

func (terminalDecider) Decide(_ context.Context, v *conflict.Verdict) (bool, error) {
	fmt.Printf("conflicto (%s):\n", v.Level)

	for _, c := range v.Conflicts {
		fmt.Printf("  #%d %s %s %s (%s)\n", c.ID, c.DateFmt, c.TimeFmt, c.Event, c.Status)
	}

	fmt.Print("¿asignar de todas formas? [y/N]: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes" || answer == "s" || answer == "si", nil
}

func main() {
	server := flag.String("server", "http://localhost:8080", "server url")
	cmd := flag.String("cmd", "list", "list|persons|assign|reassign|cancel|status|check")
	id := flag.Uint("id", 0, "invitation id")
	person := flag.Uint("person", 0, "person id")
	role := flag.String("role", "", "role for assignment")
	comment := flag.String("comment", "", "comment")
	status := flag.String("status", "", "new status")
	filter := flag.String("filter", "", "status filter for list")
	timeout := flag.Duration("timeout", time.Second*30, "operation timeout")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	api := client.NewAPI(*server, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var err error

	switch *cmd {
	case "list":
		err = listInvitations(ctx, api, *filter)
	case "persons":
		err = listPersons(ctx, api)
	case "assign", "reassign":
		err = runAssign(ctx, api, assign.Request{
			InvitationID: *id,
			PersonID:     *person,
			Role:         *role,
			Comment:      *comment,
			Substitute:   *cmd == "reassign",
		})
	case "cancel":
		err = api.Cancel(ctx, *id, *comment)
	case "status":
		err = api.SetStatus(ctx, *id, *status, *comment)
	case "check":
		err = runCheck(ctx, api, *id, *person)
	default:
		err = fmt.Errorf("unknown command %q", *cmd)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func listInvitations(ctx context.Context, api *client.API, status string) error {
	dtos, err := api.Invitations(ctx, client.Filter{Status: status})
	if err != nil {
		return err
	}

	for _, d := range dtos {
		fmt.Printf("%d\t%s %s\t%s\t%s\t%s\n", d.ID, d.DateFmt, d.TimeFmt, d.Status, d.Event, d.AssignedName)
	}

	return nil
}

func listPersons(ctx context.Context, api *client.API) error {
	if err := api.ReloadCatalog(ctx); err != nil {
		return err
	}

	api.Catalog().ForEach(func(p *model.Person) bool {
		fmt.Printf("%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Title, p.Unit)

		return true
	})

	return nil
}

func runAssign(ctx context.Context, api *client.API, req assign.Request) error {
	if req.InvitationID == 0 || req.PersonID == 0 {
		return fmt.Errorf("need -id and -person")
	}

	orch := assign.New(api, api, terminalDecider{})

	res, err := orch.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(res.State.String())

	return nil
}

func runCheck(ctx context.Context, api *client.API, id, person uint) error {
	if id == 0 || person == 0 {
		return fmt.Errorf("need -id and -person")
	}

	dto, err := api.Invitation(ctx, id)
	if err != nil {
		return err
	}

	date := ""
	if dto.Date != nil {
		date = dto.Date.String()
	}

	clock := ""
	if dto.Time != nil {
		clock = dto.Time.String()
	}

	v, err := api.CheckConflict(ctx, person, date, clock, id)
	if err != nil {
		return err
	}

	fmt.Println(v.String())

	return nil
}
