package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/router"
)

type adminUsersPage struct {
	app   *App
	users []api.User

	query  string
	role   string
	active string

	// pendingDelete waits for "confirm"; zero means nothing pending.
	pendingDelete int64
}

func (a *App) loadAdminUsers(ctx context.Context, _ router.Route) (Page, error) {
	if err := RequireRole(a.me(), api.RoleAdmin); err != nil {
		return nil, err
	}
	p := &adminUsersPage{app: a}
	if err := p.reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *adminUsersPage) reload(ctx context.Context) error {
	users, err := p.app.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	p.users = users
	return nil
}

func (p *adminUsersPage) filtered() []api.User {
	out := make([]api.User, 0, len(p.users))
	for _, u := range p.users {
		if p.role != "" && p.role != "all" && string(u.Role) != p.role {
			continue
		}
		if p.active == "active" && !u.Active || p.active == "inactive" && u.Active {
			continue
		}
		if !includesText(u.Name+" "+u.Email+" "+string(u.Role), p.query) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (p *adminUsersPage) user(id int64) *api.User {
	for i := range p.users {
		if p.users[i].ID == id {
			return &p.users[i]
		}
	}
	return nil
}

func (p *adminUsersPage) Render(w io.Writer) {
	heading(w, "Users")
	fmt.Fprintf(w, "  Search %q  Role %s  Status %s\n", p.query, filterLabel(p.role), filterLabel(p.active))
	if p.pendingDelete != 0 {
		muted(w, fmt.Sprintf("Delete user #%d? Type 'confirm' to delete or 'abort' to keep.", p.pendingDelete))
	}

	list := p.filtered()
	rows := make([][]string, 0, len(list))
	for _, u := range list {
		status := "active"
		if !u.Active {
			status = "inactive"
		}
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10), orDash(u.Name), u.Email, string(u.Role), status, orDash(u.CreatedAt),
		})
	}
	table(w, []string{"ID", "NAME", "EMAIL", "ROLE", "STATUS", "CREATED"}, rows, "No users match your search.")

	actions(w,
		`create email=<email> password=<password> [name="Full Name"]   create a counselor`,
		"role <id> <patient|counselor|admin>",
		"activate <id> | deactivate <id>",
		"delete <id>                 then 'confirm'",
		"search <text> | role-filter <all|patient|counselor|admin> | status <all|active|inactive> | clear",
	)
}

func (p *adminUsersPage) Handle(ctx context.Context, action string, args []string) error {
	switch action {
	case "search":
		p.query = strings.Join(args, " ")
		return nil
	case "role-filter":
		v := strings.ToLower(argAt(args, 0))
		if v != "" && v != "all" {
			if err := validateForm(roleForm{Role: v}); err != nil {
				return err
			}
		}
		p.role = v
		return nil
	case "status":
		v := strings.ToLower(argAt(args, 0))
		switch v {
		case "", "all", "active", "inactive":
			p.active = v
			return nil
		}
		return errors.New("status must be one of: all, active, inactive")
	case "clear":
		p.query, p.role, p.active = "", "", ""
		return nil
	case "create":
		return p.createCounselor(ctx, args)
	case "role":
		id, err := argID(args)
		if err != nil {
			return err
		}
		form := roleForm{Role: strings.ToLower(argAt(args, 1))}
		if err := validateForm(form); err != nil {
			return err
		}
		if _, err := p.app.api.SetUserRole(ctx, id, api.Role(form.Role)); err != nil {
			return err
		}
		p.app.forgetDirectory(ctx)
		p.app.toast("Role updated")
		return p.reload(ctx)
	case "activate", "deactivate":
		id, err := argID(args)
		if err != nil {
			return err
		}
		if _, err := p.app.api.SetUserActive(ctx, id, action == "activate"); err != nil {
			return err
		}
		p.app.forgetDirectory(ctx)
		p.app.toast("User updated")
		return p.reload(ctx)
	case "delete":
		id, err := argID(args)
		if err != nil {
			return err
		}
		if p.user(id) == nil {
			return fmt.Errorf("no user #%d in the list", id)
		}
		p.pendingDelete = id
		return nil
	case "confirm":
		if p.pendingDelete == 0 {
			return errors.New("nothing to confirm")
		}
		id := p.pendingDelete
		p.pendingDelete = 0
		if err := p.app.api.DeleteUser(ctx, id); err != nil {
			return err
		}
		p.app.forgetDirectory(ctx)
		p.app.toast("User deleted")
		return p.reload(ctx)
	case "abort":
		p.pendingDelete = 0
		return nil
	}
	return unknownAction(action)
}

func (p *adminUsersPage) createCounselor(ctx context.Context, args []string) error {
	named, _ := splitArgs(args)
	form := counselorForm{
		Name:     strings.TrimSpace(named["name"]),
		Email:    strings.TrimSpace(named["email"]),
		Password: named["password"],
	}
	if err := validateForm(form); err != nil {
		return err
	}
	if _, err := p.app.api.CreateCounselor(ctx, api.CreateCounselorRequest{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	}); err != nil {
		return err
	}
	p.app.forgetDirectory(ctx)
	p.app.toast("Counselor created")
	return p.reload(ctx)
}
