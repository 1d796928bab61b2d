// Command usersctl is the operational entry point for the users manager:
// account administration, access grants and app-specific token issuance
// against the configured database.
//
// Usage:
//
//	usersctl [flags] add-user <login> <email> [-superuser]
//	usersctl [flags] delete-user <login>
//	usersctl [flags] set-access <login> <idsite> <view|admin|noaccess>
//	usersctl [flags] app-token <login-or-email> <description>
//	usersctl [flags] list-users
//	usersctl [flags] purge-expired
//
// Passwords are prompted without echo on the controlling terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/server"
	"github.com/sitestats/usersmanager/internal/server/config"
	"github.com/sitestats/usersmanager/internal/server/models"
	"github.com/sitestats/usersmanager/internal/server/services"
)

func main() {
	cfg := config.LoadConfig()

	// Config flags were consumed by LoadConfig's filtered flag sets; the
	// subcommand and its arguments are whatever remains.
	args := stripConfigFlags(os.Args[1:])
	if len(args) == 0 {
		log.Fatal("usage: usersctl <add-user|delete-user|set-access|app-token|list-users|purge-expired> ...")
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}
	defer app.Close()

	if err := run(ctx, app, args[0], args[1:]); err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

// configFlags are the value-carrying flags owned by config.LoadConfig.
// Subcommand flags such as add-user's -superuser pass through untouched.
var configFlags = map[string]struct{}{
	"-c": {}, "-config": {}, "-d": {}, "-s": {}, "-l": {}, "-t": {},
}

// stripConfigFlags removes "-flag value" and "-flag=value" forms of the
// config flags, leaving the subcommand and its own arguments.
func stripConfigFlags(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		name, _, hasValue := strings.Cut(a, "=")
		if _, ok := configFlags[name]; ok {
			if !hasValue && i+1 < len(args) {
				i++
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

func run(ctx context.Context, app *server.App, command string, args []string) error {
	switch command {
	case "add-user":
		return addUser(ctx, app, args)
	case "delete-user":
		return deleteUser(ctx, app, args)
	case "set-access":
		return setAccess(ctx, app, args)
	case "app-token":
		return appToken(ctx, app, args)
	case "list-users":
		return listUsers(ctx, app)
	case "purge-expired":
		n, err := app.Tokens.PurgeExpiredTokens(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d expired tokens\n", n)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	defer common.WipeByteArray(password)
	return string(password), nil
}

func addUser(ctx context.Context, app *server.App, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
	superuser := fs.Bool("superuser", false, "grant the global superuser flag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: add-user <login> <email> [-superuser]")
	}
	login, email := fs.Arg(0), fs.Arg(1)

	password, err := promptPassword("password: ")
	if err != nil {
		return err
	}

	user, err := app.Users.AddUser(ctx, login, email, password, *superuser)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			return fmt.Errorf("login or email already taken")
		}
		return err
	}
	fmt.Printf("created %s (registered %s)\n", user.Login, user.DateRegistered.Format("2006-01-02 15:04:05"))
	return nil
}

func deleteUser(ctx context.Context, app *server.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete-user <login>")
	}
	return app.Users.DeleteUser(ctx, args[0])
}

func setAccess(ctx context.Context, app *server.App, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: set-access <login> <idsite> <view|admin|noaccess>")
	}
	idSite, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid site id %q", args[1])
	}
	level, err := models.ParseAccess(args[2])
	if err != nil {
		return err
	}
	if level == models.AccessSuperuser {
		return errors.New("superuser is a user flag, not a per-site grant")
	}
	return app.Access.SetUserAccess(ctx, args[0], idSite, level)
}

func appToken(ctx context.Context, app *server.App, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: app-token <login-or-email> <description>")
	}

	password, err := promptPassword("current password: ")
	if err != nil {
		return err
	}

	raw, err := app.Tokens.CreateAppSpecificTokenAuth(ctx, args[0], password, args[1], nil, 0)
	if err != nil {
		return err
	}
	// Printed exactly once; only the hash is stored.
	fmt.Println(raw)
	return nil
}

func listUsers(ctx context.Context, app *server.App) error {
	users, err := app.Directory.GetUsers(ctx, adminCaller())
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%s\t%s\tsuperuser=%v\n", u.Login, u.Email, u.Superuser)
	}
	return nil
}

// adminCaller is the implicit identity of the operator running usersctl
// with direct database access.
func adminCaller() services.Caller {
	return services.Caller{Login: "usersctl", Superuser: true}
}
