package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/client/services"
)

func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := GetSimpleText(a.reader, "Name:", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email:", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	roleText, err := GetSimpleText(a.reader, "Role (restaurant/association, empty to choose later):", a.out)
	if err != nil {
		return err
	}
	role := models.RoleNone
	if roleText != "" {
		if role, err = models.ParseRole(roleText); err != nil {
			printlnFn(err.Error())
			return nil
		}
	}
	phone, err := GetSimpleText(a.reader, "Phone (optional):", a.out)
	if err != nil {
		return err
	}
	address, err := GetSimpleText(a.reader, "Address (optional):", a.out)
	if err != nil {
		return err
	}

	res := a.sessions.SignUp(ctx, models.SignUpDraft{
		Name:     name,
		Email:    email,
		Password: string(password),
		Role:     role,
		Phone:    phone,
		Address:  address,
	})
	a.trackErr(ctx, res.Err)
	a.printAuthResult(res)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	if sess := a.sessions.Session(); sess.Authenticated() {
		printlnFn("Already logged in as", sess.User.Email+". Use logout first.")
		return nil
	}

	email, err := GetSimpleText(a.reader, "Email:", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	res := a.sessions.SignIn(ctx, email, string(password))
	a.trackErr(ctx, res.Err)
	a.printAuthResult(res)
	return nil
}

func (a *App) printAuthResult(res services.AuthResult) {
	if !res.Success {
		printlnFn("Error:", res.Message)
		return
	}
	if res.Message != "" {
		printlnFn(res.Message)
		return
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", res.User.Name))
	if !a.sessions.Session().Role.Valid() {
		printlnFn("Choose your role with: role restaurant|association")
	}
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	printSession(a.out, a.sessions.Session())
	return nil
}

func (a *App) SetRole(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	role, err := models.ParseRole(args[0])
	if err != nil {
		return errUsage
	}
	status, err := a.sessions.SetRole(ctx, role)
	if err != nil {
		return err
	}
	printlnFn(syncText(status))
	return nil
}

func (a *App) EditProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	kv, err := parseAssignments(args)
	if err != nil {
		printlnFn(err.Error())
		return errUsage
	}

	var patch models.ProfilePatch
	for key, value := range kv {
		value := strings.TrimSpace(value)
		switch key {
		case "name":
			patch.Name = &value
		case "email":
			patch.Email = &value
		case "phone":
			patch.Phone = &value
		case "address":
			patch.Address = &value
		default:
			printlnFn(fmt.Sprintf("Unknown profile field %q (name, email, phone, address).", key))
			return nil
		}
	}

	status, err := a.sessions.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	printlnFn(syncText(status))
	return nil
}
