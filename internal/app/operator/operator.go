// Package operator implements the out-of-band account administration used by
// cmd/admin. It is the only way to grant or revoke the ADMIN role.
package operator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"travelpoint/internal/common/security"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository"

	"golang.org/x/term"
)

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("usage")

const Usage = `Usage:
  admin promote <email>
  admin demote <email>
  admin delete-user <email>
  admin create-admin <email> <name>`

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type Operator struct {
	users repository.UserRepository
	out   io.Writer
}

func New(users repository.UserRepository, out io.Writer) *Operator {
	return &Operator{users: users, out: out}
}

// Run executes one command given as command-line arguments.
func (o *Operator) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "promote":
		if len(args) != 2 {
			return ErrUsage
		}
		return o.setRole(ctx, args[1], model.RoleAdmin)
	case "demote":
		if len(args) != 2 {
			return ErrUsage
		}
		return o.setRole(ctx, args[1], model.RoleUser)
	case "delete-user":
		if len(args) != 2 {
			return ErrUsage
		}
		return o.deleteUser(ctx, args[1])
	case "create-admin":
		if len(args) != 3 {
			return ErrUsage
		}
		return o.createAdmin(ctx, args[1], args[2])
	default:
		return ErrUsage
	}
}

func (o *Operator) setRole(ctx context.Context, email string, role model.Role) error {
	user, err := o.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user %q: %w", email, err)
	}
	if user.Role == role {
		fmt.Fprintf(o.out, "User %s already has role %s\n", email, role)
		return nil
	}
	if err := o.users.UpdateRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	fmt.Fprintf(o.out, "User %s is now %s\n", email, role)
	return nil
}

func (o *Operator) deleteUser(ctx context.Context, email string) error {
	user, err := o.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user %q: %w", email, err)
	}
	if err := o.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	fmt.Fprintf(o.out, "User %s deleted together with their articles and comments\n", email)
	return nil
}

func (o *Operator) createAdmin(ctx context.Context, email, name string) error {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" || name == "" {
		return ErrUsage
	}

	fmt.Fprint(o.out, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(o.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer wipe(pw)
	if len(pw) == 0 {
		return errors.New("password must not be empty")
	}

	hash, err := security.HashPassword(string(pw))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{Email: email, Name: name, PasswordHash: hash, Role: model.RoleAdmin}
	if err := o.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(o.out, "Administrator %s created with id %d\n", email, user.ID)
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
