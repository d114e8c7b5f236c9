package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a token and seeds the cache with the account's recent uploads.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	username, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	result, err := dash.Login(ctx, username, password)
	if err != nil {
		return err
	}

	r.logger.Info("logged in", "username", username, "uploads", len(result.Uploads), "skipped", result.Skipped)
	if err := r.writePlain("✓ Logged in as %s\n", username); err != nil {
		return err
	}
	if result.Uploads != nil {
		r.writePlain("Restored %d recent uploads\n", dash.Len())
	}
	if result.Skipped > 0 {
		r.writePlain("Skipped %d malformed uploads\n", result.Skipped)
	}
	return nil
}

// AuthRegister creates an account and stores its token.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	username, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	if err := dash.Register(ctx, username, password); err != nil {
		return err
	}

	r.logger.Info("registered", "username", username)
	return r.writePlain("✓ Account created for %s\n", username)
}

// AuthLogout forgets the token, cached uploads and selection.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	dash.Logout()
	return r.writePlain("✓ Logged out\n")
}

type authStatus struct {
	Status     string `json:"status"`
	APIURL     string `json:"api_url"`
	Uploads    int    `json:"uploads"`
	SelectedID string `json:"selected_id,omitempty"`
}

// AuthStatus prints the session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	status := authStatus{
		Status:  dash.Session().Status.String(),
		APIURL:  r.config.API.BaseURL,
		Uploads: dash.Len(),
	}
	if sel := dash.Selected(); sel != nil {
		status.SelectedID = sel.ID
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	mark := "✗"
	if dash.Session().Status == models.Authenticated {
		mark = "✓"
	}
	r.writePlain("%s %s\n", mark, status.Status)
	r.writePlain("API: %s\n", status.APIURL)
	r.writePlain("Cached uploads: %d\n", status.Uploads)
	if status.SelectedID != "" {
		r.writePlain("Selected: %s\n", status.SelectedID)
	}
	return nil
}

// credentials reads the username and password from flags, prompting for whatever is missing.
//
// The password is read without echo when input is a terminal. Empty values are passed through so the session can
// report them.
func (r *Runner) credentials(cmd *cli.Command) (string, string, error) {
	username := cmd.String("username")
	password := cmd.String("password")

	reader := bufio.NewReader(r.input)
	if username == "" {
		r.writePlain("Username: ")
		line, err := readLine(reader)
		if err != nil {
			return "", "", err
		}
		username = line
	}

	if password == "" {
		r.writePlain("Password: ")
		if f, ok := r.input.(*os.File); ok && term.IsTerminal(f.Fd()) {
			secret, err := term.ReadPassword(f.Fd())
			r.writePlain("\n")
			if err != nil {
				return "", "", fmt.Errorf("failed to read password: %w", err)
			}
			password = string(secret)
		} else {
			line, err := readLine(reader)
			if err != nil {
				return "", "", err
			}
			password = line
		}
	}

	return username, password, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
