package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/and161185/passvault/internal/convert"
	"github.com/and161185/passvault/internal/dispatch"
	"github.com/and161185/passvault/internal/generator"
	"github.com/and161185/passvault/internal/model"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.dispatcher(cmd.Context()); err != nil {
				return err
			}
			if err := c.app.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "schema is up to date")
			return nil
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register USERNAME",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(c.in, cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			acc, err := dispatch.Call[model.AccountResponse](cmd.Context(), d, dispatch.RegisterRequest{Username: args[0], Password: pw})
			if err != nil {
				return userError("register", err)
			}
			return c.printJSON(acc)
		},
	}
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in and store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(c.in, cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			tok, err := dispatch.Call[string](cmd.Context(), d, dispatch.LoginRequest{Username: args[0], Password: pw})
			if err != nil {
				return userError("login", err)
			}
			exp, err := tokenExpiry(tok)
			if err != nil {
				return err
			}
			if err := c.tokens().save(tok, exp); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(c.out, "logged in until %s\n", exp.Local().Format("15:04:05"))
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.tokens().remove()
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var notes string
	var gen bool
	cmd := &cobra.Command{
		Use:   "add KEY",
		Short: "Store a new secret under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.session()
			if err != nil {
				return err
			}
			var value string
			if gen {
				value, err = generator.Generate(generator.Options{
					Length: generator.DefaultLength, Uppercase: true, Numbers: true, Symbols: true,
				})
			} else {
				value, err = readSecret(c.in, cmd.ErrOrStderr(), "Secret: ")
			}
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			e, err := dispatch.Call[model.EntryResponse](cmd.Context(), d, dispatch.CreateEntryRequest{
				Authed: auth, Key: args[0], Value: value, Notes: convert.OptionalNotes(notes),
			})
			if err != nil {
				return userError("add", err)
			}
			return c.printJSON(e)
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&gen, "generate", false, "generate a strong secret instead of prompting")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var reveal, asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := c.session()
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := dispatch.Call[[]model.Entry](cmd.Context(), d, dispatch.ListEntriesRequest{Authed: auth})
			if err != nil {
				return userError("list", err)
			}
			if asJSON {
				if reveal {
					return c.printJSON(entries)
				}
				return c.printJSON(convert.ToEntryResponses(entries))
			}
			return writeTable(c.out, entries, reveal)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "include secret values")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeTable(w io.Writer, entries []model.Entry, reveal bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if reveal {
		fmt.Fprintln(tw, "ID\tKEY\tVALUE\tNOTES\tUPDATED")
	} else {
		fmt.Fprintln(tw, "ID\tKEY\tNOTES\tUPDATED")
	}
	for _, e := range entries {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		updated := e.UpdatedAt.Local().Format("2006-01-02 15:04")
		if reveal {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Key, e.Value, notes, updated)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Key, notes, updated)
		}
	}
	return tw.Flush()
}

func (c *cli) showCmd() *cobra.Command {
	var copyIt bool
	cmd := &cobra.Command{
		Use:   "show KEY",
		Short: "Print the secret stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.session()
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			e, err := dispatch.Call[model.Entry](cmd.Context(), d, dispatch.GetEntryRequest{Authed: auth, Key: args[0]})
			if err != nil {
				return userError("show", err)
			}
			return c.emitSecret(cmd, e.Value, copyIt)
		},
	}
	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy to clipboard instead of printing")
	return cmd
}

func (c *cli) emitSecret(cmd *cobra.Command, s string, copyIt bool) error {
	if copyIt {
		if err := copyToClipboard(s); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
		return nil
	}
	fmt.Fprintln(c.out, s)
	return nil
}

func (c *cli) updateCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace the secret and notes of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.session()
			if err != nil {
				return err
			}
			value, err := readSecret(c.in, cmd.ErrOrStderr(), "New secret: ")
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			e, err := dispatch.Call[model.EntryResponse](cmd.Context(), d, dispatch.UpdateEntryRequest{
				Authed: auth, ID: args[0], Value: value, Notes: convert.OptionalNotes(notes),
			})
			if err != nil {
				return userError("update", err)
			}
			return c.printJSON(e)
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "new notes (empty clears them)")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete the entry stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.session()
			if err != nil {
				return err
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			e, err := dispatch.Call[model.EntryResponse](cmd.Context(), d, dispatch.DeleteEntryRequest{Authed: auth, Key: args[0]})
			if err != nil {
				return userError("delete", err)
			}
			return c.printJSON(e)
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import key,value[,notes] records from a CSV file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.session()
			if err != nil {
				return err
			}
			var src io.Reader = c.in
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			d, err := c.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			res, err := dispatch.Call[model.ImportResult](cmd.Context(), d, dispatch.ImportEntriesRequest{Authed: auth, CSV: src})
			if err != nil {
				return userError("import", err)
			}
			fmt.Fprintf(c.out, "imported %d, skipped %d existing\n", res.Imported, res.Skipped)
			return nil
		},
	}
}

func (c *cli) generateCmd() *cobra.Command {
	var req dispatch.GeneratePasswordRequest
	var length int
	var copyIt bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Length = &length
			// generation needs no storage
			d := dispatch.New(nil, nil, nil, c.logger())
			pw, err := dispatch.Call[string](cmd.Context(), d, req)
			if err != nil {
				return userError("generate", err)
			}
			return c.emitSecret(cmd, pw, copyIt)
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", generator.DefaultLength, "password length")
	cmd.Flags().BoolVarP(&req.Uppercase, "upper", "u", false, "include uppercase letters")
	cmd.Flags().BoolVarP(&req.Numbers, "numbers", "n", false, "include digits")
	cmd.Flags().BoolVarP(&req.Symbols, "symbols", "s", false, "include symbols")
	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy to clipboard instead of printing")
	return cmd
}
