package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"giftwise/internal/client"
)

const dateLayout = "2006-01-02"

func passwordFlag(cmd *cobra.Command, password *string) {
	cmd.Flags().StringVar(password, "password", "", "Password (default: $GIFTWISE_PASSWORD)")
}

func resolvePassword(password string) (string, error) {
	if password == "" {
		password = os.Getenv("GIFTWISE_PASSWORD")
	}
	if password == "" {
		return "", fmt.Errorf("a password is required (--password or GIFTWISE_PASSWORD)")
	}
	return password, nil
}

func registerCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := resolvePassword(password)
			if err != nil {
				return err
			}
			user, err := a.session.Register(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(user)
			}
			fmt.Fprintf(a.out, "Registered and logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	passwordFlag(cmd, &password)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := resolvePassword(password)
			if err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(user)
			}
			fmt.Fprintf(a.out, "Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	passwordFlag(cmd, &password)
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Restore only to learn the token; an expired one is simply dropped.
			_ = a.session.Restore(cmd.Context())
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			user := a.session.User()
			if a.asJSON {
				return a.printJSON(user)
			}
			fmt.Fprintf(a.out, "%s <%s> (id %s, currency %s)\n", user.Name, user.Email, user.ID, user.Preferences.Currency)
			return nil
		},
	}
}

func formatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD", flag)
	}
	return t, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func table(a *app, header string, rows func(w *tabwriter.Writer)) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

func peopleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "people", Short: "Manage the people you buy for"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			people, err := a.session.People(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(people)
			}
			return table(a, "ID\tNAME\tRELATIONSHIP", func(w *tabwriter.Writer) {
				for _, p := range people {
					fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Relationship)
				}
			})
		},
	}

	var relationship, email, notes, birthday string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			in := client.PersonInput{Name: args[0], Relationship: relationship, Email: email, Notes: notes}
			if birthday != "" {
				t, err := parseDate("birthday", birthday)
				if err != nil {
					return err
				}
				in.Birthday = &t
			}
			person, err := a.session.AddPerson(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(person)
			}
			fmt.Fprintf(a.out, "Added %s (%s)\n", person.Name, person.ID)
			return nil
		},
	}
	add.Flags().StringVar(&relationship, "relationship", "", "How you know them")
	add.Flags().StringVar(&email, "email", "", "Their email")
	add.Flags().StringVar(&notes, "notes", "", "Notes")
	add.Flags().StringVar(&birthday, "birthday", "", "Birthday (YYYY-MM-DD)")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a person and the gifts for them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			if err := a.session.RemovePerson(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

func giftsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "gifts", Short: "Manage gifts"}

	var q client.GiftQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List gifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			gifts, err := a.session.Gifts(cmd.Context(), q)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(gifts)
			}
			return table(a, "ID\tNAME\tPRICE\tSTATUS\tRECIPIENT", func(w *tabwriter.Writer) {
				for _, g := range gifts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.Name, formatMoney(g.Price, g.Currency), g.Status, g.RecipientID)
				}
			})
		},
	}
	list.Flags().StringVar(&q.Status, "status", "", "Only gifts with this status")
	list.Flags().StringVar(&q.RecipientID, "to", "", "Only gifts for this person")
	list.Flags().StringVar(&q.OccasionID, "occasion", "", "Only gifts for this occasion")

	var in client.GiftInput
	var occasionID string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a gift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			in.OccasionID = optional(occasionID)
			in.Currency = strings.ToUpper(in.Currency)
			gift, err := a.session.AddGift(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(gift)
			}
			fmt.Fprintf(a.out, "Added %s (%s), %s, %s\n", gift.Name, gift.ID, formatMoney(gift.Price, gift.Currency), gift.Status)
			return nil
		},
	}
	add.Flags().StringVar(&in.RecipientID, "to", "", "Recipient person id")
	add.Flags().StringVar(&in.Name, "name", "", "What the gift is")
	add.Flags().Int64Var(&in.Price, "price", 0, "Price in minor units (cents)")
	add.Flags().StringVar(&in.Currency, "currency", "", "ISO 4217 code (default: your preference)")
	add.Flags().StringVar(&in.Status, "status", "", "planned, purchased, wrapped or given")
	add.Flags().StringVar(&in.URL, "url", "", "Where to buy it")
	add.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	add.Flags().StringVar(&occasionID, "occasion", "", "Occasion id")
	_ = add.MarkFlagRequired("to")
	_ = add.MarkFlagRequired("name")

	status := &cobra.Command{
		Use:   "status <id> <planned|purchased|wrapped|given>",
		Short: "Change a gift's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			gift, err := a.session.SetGiftStatus(cmd.Context(), args[0], strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(gift)
			}
			fmt.Fprintf(a.out, "%s is now %s\n", gift.Name, gift.Status)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a gift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			if err := a.session.RemoveGift(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, status, rm)
	return cmd
}

func occasionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "occasions", Short: "Manage occasions"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List occasions, soonest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			occasions, err := a.session.Occasions(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(occasions)
			}
			return table(a, "ID\tDATE\tNAME\tTYPE", func(w *tabwriter.Writer) {
				for _, o := range occasions {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.ID, o.Date.Format(dateLayout), o.Name, o.Type)
				}
			})
		},
	}

	var in client.OccasionInput
	var date, personID string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an occasion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			d, err := parseDate("date", date)
			if err != nil {
				return err
			}
			in.Name, in.Date, in.PersonID = args[0], d, optional(personID)
			occasion, err := a.session.AddOccasion(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(occasion)
			}
			fmt.Fprintf(a.out, "Added %s on %s (%s)\n", occasion.Name, occasion.Date.Format(dateLayout), occasion.ID)
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	add.Flags().StringVar(&in.Type, "type", "", "birthday, anniversary, holiday or other")
	add.Flags().StringVar(&personID, "person", "", "Person id")
	add.Flags().BoolVar(&in.Recurring, "recurring", false, "Repeats every year")
	add.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	_ = add.MarkFlagRequired("date")

	cmd.AddCommand(list, add)
	return cmd
}

func budgetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "budgets", Short: "Manage budgets"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			budgets, err := a.session.Budgets(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(budgets)
			}
			return table(a, "ID\tNAME\tAMOUNT\tPERIOD\tSTART", func(w *tabwriter.Writer) {
				for _, b := range budgets {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Name, formatMoney(b.Amount, b.Currency), b.Period, b.StartDate.Format(dateLayout))
				}
			})
		},
	}

	var in client.BudgetInput
	var start, end, personID, occasionID string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			in.Name = args[0]
			in.Currency = strings.ToUpper(in.Currency)
			in.PersonID, in.OccasionID = optional(personID), optional(occasionID)
			if start != "" {
				t, err := parseDate("start", start)
				if err != nil {
					return err
				}
				in.StartDate = &t
			}
			if end != "" {
				t, err := parseDate("end", end)
				if err != nil {
					return err
				}
				in.EndDate = &t
			}
			budget, err := a.session.AddBudget(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(budget)
			}
			fmt.Fprintf(a.out, "Added %s, %s %s (%s)\n", budget.Name, formatMoney(budget.Amount, budget.Currency), budget.Period, budget.ID)
			return nil
		},
	}
	add.Flags().Int64Var(&in.Amount, "amount", 0, "Amount in minor units (cents)")
	add.Flags().StringVar(&in.Period, "period", "monthly", "monthly, yearly or custom")
	add.Flags().StringVar(&in.Currency, "currency", "", "ISO 4217 code (default: your preference)")
	add.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	add.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, required for custom)")
	add.Flags().StringVar(&personID, "person", "", "Person id")
	add.Flags().StringVar(&occasionID, "occasion", "", "Occasion id")
	_ = add.MarkFlagRequired("amount")

	cmd.AddCommand(list, add)
	return cmd
}
