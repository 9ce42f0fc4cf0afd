package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections swapped in
// tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	getOptional   = GetOptional
)

func (a *App) credentials(args []string) (string, string, error) {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return "", "", err
		}
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	return strings.TrimSpace(email), string(pw), nil
}

// Login signs in with email and password. The email may be given as the
// first argument.
func (a *App) Login(ctx context.Context, args []string) error {
	email, password, err := a.credentials(args)
	if err != nil {
		return err
	}
	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.setMode(ModeOnline)
	a.printf("Welcome, %s!\n", a.clean(u.DisplayName()))
	return nil
}

// AdminLogin signs in through the administrator endpoint.
func (a *App) AdminLogin(ctx context.Context, args []string) error {
	email, password, err := a.credentials(args)
	if err != nil {
		return err
	}
	u, err := a.auth.AdminLogin(ctx, email, password)
	if err != nil {
		return err
	}
	a.setMode(ModeOnline)
	a.printf("Signed in as administrator %s.\n", a.clean(u.DisplayName()))
	return nil
}

// Signup walks through the registration form.
func (a *App) Signup(ctx context.Context, _ []string) error {
	var req models.SignupRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &req.Name},
		{"Email", &req.Email},
		{"Phone (optional)", &req.Phone},
		{"Account type (farmer, buyer, expert)", &req.UserType},
		{"Main crop (optional)", &req.Crop},
		{"Location (optional)", &req.Location},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if req.UserType == "" {
		req.UserType = "farmer"
	}
	req.UserType = strings.ToLower(req.UserType)

	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	req.Password = string(pw)

	resp, err := a.auth.Signup(ctx, req)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		a.println("Account created. Type 'login' to sign in.")
		return nil
	}
	a.println("Account created. You are signed in.")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// Me prints the current profile.
func (a *App) Me(ctx context.Context, _ []string) error {
	u, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	a.printProfile(u)
	return nil
}

func (a *App) printProfile(u *models.User) {
	rows := [][2]string{
		{"Name", u.Name},
		{"Email", u.Email},
		{"Phone", u.Phone},
		{"Account", u.UserType},
		{"Crop", u.Crop},
		{"Location", u.Location},
		{"State", u.State},
		{"District", u.District},
		{"Village", u.Village},
	}
	for _, r := range rows {
		if r[1] != "" {
			a.printf("%-9s %s\n", r[0]+":", a.clean(r[1]))
		}
	}
}

// Profile edits the profile field by field; empty answers keep the value.
func (a *App) Profile(ctx context.Context, _ []string) error {
	cur, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}

	var upd models.ProfileUpdate
	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"Name", cur.Name, &upd.Name},
		{"Phone", cur.Phone, &upd.Phone},
		{"Crop", cur.Crop, &upd.Crop},
		{"Location", cur.Location, &upd.Location},
		{"State", cur.State, &upd.State},
		{"District", cur.District, &upd.District},
		{"Village", cur.Village, &upd.Village},
	}
	for _, f := range fields {
		v, changed, err := getOptional(a.reader, f.prompt, f.current, a.out)
		if err != nil {
			return err
		}
		if changed {
			*f.dst = &v
		}
	}
	if upd.Empty() {
		a.println("Nothing changed.")
		return nil
	}

	u, err := a.auth.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	a.println("Profile updated.")
	a.printProfile(u)
	return nil
}

func requireArg(args []string, usage string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errUsage(usage)
	}
	return args[0], nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
