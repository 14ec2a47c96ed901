package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hobbytracker/internal/client/client"
)

// Register prompts for the new user's details and submits them.
func (a *App) Register(ctx context.Context) {

	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	defer clear(password)

	if username == "" || email == "" || len(password) == 0 {
		fmt.Fprintln(a.out, "Username, email and password are required")
		return
	}

	u, err := a.client.Register(ctx, username, email, string(password))
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(a.out, "Registration failed:", apiErr.Error())
			return
		}
		fmt.Fprintln(a.out, "Registration failed:", err.Error())
		return
	}

	fmt.Fprintf(a.out, "Registered user #%d (%s, %s)\n", u.ID, u.Username, u.Email)
}
