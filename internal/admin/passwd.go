package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

func newPasswdCommand(opts *options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Set a new password for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := promptNewPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			if len(pw) < services.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters long", services.MinPasswordLength)
			}

			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			us := services.NewUserService(e.db, e.repomanager, nil)
			email = strings.ToLower(strings.TrimSpace(email))
			if err := us.ResetPassword(cmd.Context(), email, string(pw)); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("user %s not found", email)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "e-mail of the user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// promptNewPassword reads the password twice without echo.
func promptNewPassword(w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(w, "New password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, errPasswordMismatch
	}
	return first, nil
}
