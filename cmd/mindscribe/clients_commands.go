package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mindscribe/internal/api"
	"mindscribe/internal/app"
	"mindscribe/internal/records"
)

func newClientsCommand(ctx *commandContext) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Manage the practice's clients",
	}
	clientsCmd.AddCommand(newClientsListCommand(ctx))
	clientsCmd.AddCommand(newClientsAddCommand(ctx))
	clientsCmd.AddCommand(newClientsDeleteCommand(ctx))
	return clientsCmd
}

func newClientsListCommand(ctx *commandContext) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients sorted by last name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				clients, err := practiceService(a).Clients(c, search)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.ClientListResponse{Clients: clients})
				}
				out := cmd.OutOrStdout()
				if len(clients) == 0 {
					fmt.Fprintln(out, "No clients found")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Type", "Email", "Modalities"},
					clientRows(clients),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive name filter")
	return cmd
}

func clientRows(clients []api.Client) [][]string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		name := c.DisplayName
		if c.Client2 != nil {
			name += " & " + strings.TrimSpace(c.Client2.FirstName+" "+c.Client2.LastName)
		}
		rows = append(rows, []string{c.ID, name, string(c.Type), c.Email, strings.Join(c.Modalities, ", ")})
	}
	return rows
}

func newClientsAddCommand(ctx *commandContext) *cobra.Command {
	var draft records.ClientDraft
	var clientType string
	var partner records.Partner

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Type = records.ClientType(clientType)
			if draft.Type == records.ClientCouple || partner != (records.Partner{}) {
				p := partner
				draft.Client2 = &p
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				client, err := practiceService(a).CreateClient(c, draft)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, client)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added client %s (%s)\n", client.DisplayName, client.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&draft.FirstName, "first-name", "", "First name")
	flags.StringVar(&draft.LastName, "last-name", "", "Last name")
	flags.StringVar(&draft.Email, "email", "", "Email address")
	flags.StringVar(&draft.Pronouns, "pronouns", "", "Pronouns")
	flags.StringSliceVar(&draft.Modalities, "modality", nil, "Therapy modality (repeatable)")
	flags.StringVar(&clientType, "type", string(records.ClientIndividual), "Client type (individual or couple)")
	flags.StringVar(&partner.FirstName, "partner-first-name", "", "Partner first name (couples)")
	flags.StringVar(&partner.LastName, "partner-last-name", "", "Partner last name (couples)")
	flags.StringVar(&partner.Pronouns, "partner-pronouns", "", "Partner pronouns (couples)")
	flags.StringVar(&partner.Email, "partner-email", "", "Partner email (couples)")
	return cmd
}

func newClientsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				if err := practiceService(a).DeleteClient(c, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted client %s\n", args[0])
				return nil
			})
		},
	}
}
