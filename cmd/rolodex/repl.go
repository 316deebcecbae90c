// The interactive console front end for the directory service.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"rolodex/internal/contact"
	"rolodex/internal/directory"
)

const replHelp = `Commands:
  add <id> <first> <last> <phone> <address...>     Create a contact
  update <id> <first> <last> <phone> <address...>  Replace a contact
  get <id>                                         Look up a contact
  delete <id>                                      Delete a contact
  exists <id>                                      Check membership
  list                                             All contacts, unordered
  sorted                                           All contacts by name
  range <start> <end>                              Contacts in a name range
  count                                            Number of contacts
  stats                                            Cache occupancy
  help                                             This text
  quit                                             Exit`

// runREPL reads commands from in until EOF, "quit", or ctx cancellation.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, svc *directory.Service) error {
	fmt.Fprintln(out, `rolodex ready; type "help" for commands`)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := dispatch(out, svc, cmd, args); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func dispatch(out io.Writer, svc *directory.Service, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(out, replHelp)
	case "add", "update":
		c, err := parseContact(args)
		if err != nil {
			return err
		}
		if cmd == "add" {
			err = svc.Add(c)
		} else {
			err = svc.Update(c)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s ok: %s\n", cmd, c.ID)
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get <id>")
		}
		c, err := svc.Get(args[0])
		if err != nil {
			return err
		}
		printContacts(out, []*contact.Contact{c})
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <id>")
		}
		deleted, err := svc.Remove(args[0])
		if err != nil {
			return err
		}
		if deleted {
			fmt.Fprintf(out, "deleted %s\n", args[0])
		} else {
			fmt.Fprintf(out, "not found: %s\n", args[0])
		}
	case "exists":
		if len(args) != 1 {
			return fmt.Errorf("usage: exists <id>")
		}
		fmt.Fprintf(out, "%v\n", svc.Exists(args[0]))
	case "list":
		printContacts(out, svc.List())
	case "sorted":
		printContacts(out, svc.ListSorted())
	case "range":
		if len(args) != 2 {
			return fmt.Errorf("usage: range <start> <end>")
		}
		contacts, err := svc.ListRange(args[0], args[1])
		if err != nil {
			return err
		}
		printContacts(out, contacts)
	case "count":
		fmt.Fprintf(out, "%d\n", svc.Count())
	case "stats":
		fmt.Fprintf(out, "cache %s\n", svc.CacheStats())
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
	return nil
}

// parseContact builds a contact from "<id> <first> <last> <phone>
// <address...>". The address keeps its spaces.
func parseContact(args []string) (*contact.Contact, error) {
	if len(args) < 5 {
		return nil, fmt.Errorf("usage: <id> <first> <last> <phone> <address>")
	}
	return &contact.Contact{
		ID:        args[0],
		FirstName: args[1],
		LastName:  args[2],
		Phone:     args[3],
		Address:   strings.Join(args[4:], " "),
	}, nil
}

func printContacts(out io.Writer, contacts []*contact.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(out, "no contacts")
		return
	}
	tw := tabwriter.NewWriter(out, 2, 8, 2, ' ', 0)
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s, %s\t%s\t%s\n", c.ID, c.LastName, c.FirstName, c.Phone, c.Address)
	}
	_ = tw.Flush()
}
