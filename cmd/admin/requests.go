package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/projectlibrary/internal/customrequest"
	requestStore "github.com/MrJamesThe3rd/projectlibrary/internal/customrequest/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

func requestsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review custom project requests",
	}

	cmd.AddCommand(listRequestsCmd(e), transitionRequestCmd(e))

	return cmd
}

func requestService(e *env) *customrequest.Service {
	return customrequest.NewService(requestStore.New(e.db), validation.New(), nil)
}

func listRequestsCmd(e *env) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *customrequest.Status

			if status != "" {
				s := customrequest.Status(status)
				if !s.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}

				filter = &s
			}

			reqs, err := requestService(e).List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tNAME\tEMAIL\tDEADLINE\tBUDGET")

			for _, r := range reqs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Status, r.ProjectType, r.Name, r.Email, r.Deadline.Format("2006-01-02"), r.Budget.StringFixed(2))
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show requests in this status")

	return cmd
}

func transitionRequestCmd(e *env) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "set-status [request-id] [status]",
		Short: "Move a request to in_progress, completed or rejected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid request id: %w", err)
			}

			r, err := requestService(e).Transition(cmd.Context(), id, customrequest.Status(args[1]), notes)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "request %s is now %s\n", r.ID, r.Status)

			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "admin notes stored with the request")

	return cmd
}
