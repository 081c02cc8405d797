package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/projectlibrary/internal/catalog/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/gateway"
	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
	identityStore "github.com/MrJamesThe3rd/projectlibrary/internal/identity/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
	orderStore "github.com/MrJamesThe3rd/projectlibrary/internal/order/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

func orderStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "order-status [order-id] [failed|refunded]",
		Short: "Mark a pending order as failed or refunded",
		Long: `Mark a pending order as failed or refunded.

Orders are only completed by a verified payment and cannot be completed here.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw := gateway.NewClient(e.cfg.Gateway.BaseURL, e.cfg.Gateway.KeyID, e.cfg.Gateway.KeySecret, e.cfg.Gateway.Timeout)
			svc := order.NewService(orderStore.New(e.db), catalog.NewService(catalogStore.New(e.db)), gw,
				validation.New(), e.cfg.Gateway.Currency)

			o, err := svc.SetStatus(cmd.Context(), args[0], order.Status(args[1]))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "order %s is now %s\n", o.OrderID, o.Status)

			return nil
		},
	}
}

func staffCmd(e *env) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "staff [username]",
		Short: "Grant or revoke staff access for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := identityStore.New(e.db).SetStaff(cmd.Context(), args[0], !revoke); err != nil {
				if errors.Is(err, identity.ErrNotFound) {
					return fmt.Errorf("no user named %q", args[0])
				}

				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s staff=%t\n", args[0], !revoke)

			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove staff access instead of granting it")

	return cmd
}
