// Package cli implements a small interactive client for the authgate HTTP
// API: register, login, refresh, and a whoami-style lookup.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type apiError struct {
	Error string `json:"error"`
}

type App struct {
	serverURL string
	client    *http.Client
	reader    *bufio.Reader

	// last pair received from the server
	access  string
	refresh string
}

func NewApp(serverURL string) *App {
	return &App{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		reader:    bufio.NewReader(os.Stdin),
	}
}

func (a *App) Run(ctx context.Context) {
	fmt.Println("commands: register, login, refresh, me, quit")

	for {
		cmd, err := GetSimpleText(a.reader, "-Enter command")
		if err != nil {
			return
		}

		switch cmd {
		case "register":
			err = a.doRegister(ctx)
		case "login":
			err = a.doLogin(ctx)
		case "refresh":
			err = a.doRefresh(ctx)
		case "me":
			err = a.doMe(ctx)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", cmd)
			continue
		}

		if err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (a *App) doRegister(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email")
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "-Enter name")
	if err != nil {
		return err
	}
	password, err := GetPassword()
	if err != nil {
		return err
	}

	body := map[string]string{"email": email, "name": name, "password": string(password)}
	var out map[string]any
	if err := a.post(ctx, "/api/v1/auth/register", body, &out); err != nil {
		return err
	}

	fmt.Println("registered:", out["email"])
	return nil
}

func (a *App) doLogin(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email")
	if err != nil {
		return err
	}
	password, err := GetPassword()
	if err != nil {
		return err
	}

	body := map[string]string{"email": email, "password": string(password)}
	var pair tokenPair
	if err := a.post(ctx, "/api/v1/auth/login", body, &pair); err != nil {
		return err
	}

	a.access, a.refresh = pair.AccessToken, pair.RefreshToken
	fmt.Println("access token:", pair.AccessToken)
	fmt.Println("refresh token:", pair.RefreshToken)
	return nil
}

func (a *App) doRefresh(ctx context.Context) error {
	if a.access == "" || a.refresh == "" {
		return fmt.Errorf("no stored token pair, login first")
	}

	body := tokenPair{AccessToken: a.access, RefreshToken: a.refresh}
	var pair tokenPair
	if err := a.post(ctx, "/api/v1/auth/refresh", body, &pair); err != nil {
		return err
	}

	a.access, a.refresh = pair.AccessToken, pair.RefreshToken
	fmt.Println("access token:", pair.AccessToken)
	fmt.Println("refresh token:", pair.RefreshToken)
	return nil
}

func (a *App) doMe(ctx context.Context) error {
	if a.access == "" {
		return fmt.Errorf("no access token, login first")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.serverURL+"/api/v1/auth/me", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.access)

	var out map[string]any
	if err := a.do(req, &out); err != nil {
		return err
	}

	fmt.Printf("id=%v email=%v\n", out["id"], out["email"])
	return nil
}

func (a *App) post(ctx context.Context, path string, body any, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.serverURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return a.do(req, out)
}

func (a *App) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s (%d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
