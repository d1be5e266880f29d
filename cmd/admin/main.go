// Command admin manages portal content from the terminal through the API.
//
//	admin [-api URL] [-token-file PATH] [-timeout D] login -email EMAIL [-password PASS]
//	admin list <resource>
//	admin get <resource> <id>
//	admin create <resource> <file.json|->
//	admin update <resource> <id> <patch.json|->
//	admin delete <resource> <id>
//	admin me | logout
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manjeshpatagar/mytradingview/internal/gateway"
	"github.com/manjeshpatagar/mytradingview/internal/models"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		logrus.WithError(err).Fatal("admin")
	}
}

// resource adapts a typed gateway resource to raw JSON input and output.
type resource interface {
	list(ctx context.Context) (interface{}, error)
	get(ctx context.Context, id string) (interface{}, error)
	create(ctx context.Context, body []byte) (interface{}, error)
	update(ctx context.Context, id string, body []byte) (interface{}, error)
	remove(ctx context.Context, id string) error
}

type typed[T any] struct {
	r *gateway.Resource[T]
}

func (t typed[T]) list(ctx context.Context) (interface{}, error) { return t.r.List(ctx) }

func (t typed[T]) get(ctx context.Context, id string) (interface{}, error) { return t.r.Get(ctx, id) }

func (t typed[T]) create(ctx context.Context, body []byte) (interface{}, error) {
	var rec T
	if err := strictJSON(body, &rec); err != nil {
		return nil, err
	}
	return t.r.Create(ctx, &rec)
}

func (t typed[T]) update(ctx context.Context, id string, body []byte) (interface{}, error) {
	var patch map[string]interface{}
	if err := strictJSON(body, &patch); err != nil {
		return nil, err
	}
	return t.r.Update(ctx, id, patch)
}

func (t typed[T]) remove(ctx context.Context, id string) error { return t.r.Delete(ctx, id) }

func resources(c *gateway.Client) map[string]resource {
	return map[string]resource{
		"stock-news":       typed[models.StockNews]{c.StockNews()},
		"market-news":      typed[models.MarketNews]{c.MarketNews()},
		"intraday-stock":   typed[models.IntradayStock]{c.IntradayStocks()},
		"intraday-results": typed[models.IntradayResult]{c.IntradayResults()},
		"results":          typed[models.CorporateResult]{c.Results()},
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	api := fs.String("api", envOr("MYTRADINGVIEW_API", "http://localhost:8080/api"), "API base URL")
	tokenFile := fs.String("token-file", defaultTokenFile(), "where the login token is kept")
	timeout := fs.Duration("timeout", 20*time.Second, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client := gateway.New(*api, &gateway.FileTokenStore{Path: *tokenFile},
		gateway.WithHTTPClient(&http.Client{Timeout: *timeout}))
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, rest := rest[0], rest[1:]

	switch cmd {
	case "login":
		return login(ctx, client, rest, stdout)
	case "logout":
		return client.Logout(ctx)
	case "me":
		u, err := client.Me(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, u)
	}

	if len(rest) == 0 {
		return fmt.Errorf("%s: missing resource (%s)", cmd, strings.Join(resourceNames(client), ", "))
	}
	res, ok := resources(client)[rest[0]]
	if !ok {
		return fmt.Errorf("unknown resource %q (%s)", rest[0], strings.Join(resourceNames(client), ", "))
	}
	rest = rest[1:]

	var (
		out interface{}
		err error
	)
	switch cmd {
	case "list":
		out, err = res.list(ctx)
	case "get":
		if err := need(cmd, rest, 1); err != nil {
			return err
		}
		out, err = res.get(ctx, rest[0])
	case "create":
		if err := need(cmd, rest, 1); err != nil {
			return err
		}
		body, rerr := readInput(rest[0], stdin)
		if rerr != nil {
			return rerr
		}
		out, err = res.create(ctx, body)
	case "update":
		if err := need(cmd, rest, 2); err != nil {
			return err
		}
		body, rerr := readInput(rest[1], stdin)
		if rerr != nil {
			return rerr
		}
		out, err = res.update(ctx, rest[0], body)
	case "delete":
		if err := need(cmd, rest, 1); err != nil {
			return err
		}
		if err := res.remove(ctx, rest[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, "deleted", rest[0])
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}
	return printJSON(stdout, out)
}

func login(ctx context.Context, c *gateway.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("MYTRADINGVIEW_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *email == "" || *password == "" {
		return errors.New("login: -email and -password (or MYTRADINGVIEW_PASSWORD) are required")
	}
	s, err := c.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "logged in as %s until %s\n", s.User.Email, s.ExpiresAt.Format("2006-01-02 15:04"))
	return err
}

func need(cmd string, args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%s: expected %d more argument(s)", cmd, n)
	}
	return nil
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func strictJSON(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resourceNames(c *gateway.Client) []string {
	var names []string
	for name := range resources(c) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mytradingview", "token")
}
