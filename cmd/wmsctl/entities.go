package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"wms/internal/client"
	"wms/internal/model"
)

// entityOps binds one REST collection to its client methods.
type entityOps[T any] struct {
	list   func(*client.Client, context.Context, client.ListOptions) (model.Page[T], error)
	get    func(*client.Client, context.Context, int64) (T, error)
	create func(*client.Client, context.Context, T) (T, error)
	update func(*client.Client, context.Context, int64, T) (T, error)
	remove func(*client.Client, context.Context, int64) error
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newEntityCmd[T any](a *app, use, short string, ops entityOps[T]) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	var opts client.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			page, err := ops.list(a.api, cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(page)
		},
	}
	listCmd.Flags().IntVar(&opts.Page, "page", 0, "Page number")
	listCmd.Flags().IntVar(&opts.Limit, "limit", 0, "Page size")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			out, err := ops.get(a.api, cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			if err := ops.remove(a.api, cmd.Context(), id); err != nil {
				return err
			}
			return a.print(map[string]int64{"deleted": id})
		},
	}

	var file string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record from a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in T
			if err := readPayload(file, os.Stdin, &in); err != nil {
				return err
			}
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			out, err := ops.create(a.api, cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}
	createCmd.Flags().StringVarP(&file, "file", "f", "-", "Payload file, - for stdin")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a record from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in T
			if err := readPayload(file, os.Stdin, &in); err != nil {
				return err
			}
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			out, err := ops.update(a.api, cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}
	updateCmd.Flags().StringVarP(&file, "file", "f", "-", "Payload file, - for stdin")

	cmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}

func newAccountsCmd(a *app) *cobra.Command {
	return newEntityCmd(a, "accounts", "Manage accounts", entityOps[model.Account]{
		list:   (*client.Client).ListAccounts,
		get:    (*client.Client).GetAccount,
		create: (*client.Client).CreateAccount,
		update: (*client.Client).UpdateAccount,
		remove: (*client.Client).DeleteAccount,
	})
}

func newItemsCmd(a *app) *cobra.Command {
	return newEntityCmd(a, "items", "Manage catalogued items", entityOps[model.Item]{
		list:   (*client.Client).ListItems,
		get:    (*client.Client).GetItem,
		create: (*client.Client).CreateItem,
		update: (*client.Client).UpdateItem,
		remove: (*client.Client).DeleteItem,
	})
}

func newBoxesCmd(a *app) *cobra.Command {
	return newEntityCmd(a, "boxes", "Manage boxes", entityOps[model.Box]{
		list:   (*client.Client).ListBoxes,
		get:    (*client.Client).GetBox,
		create: (*client.Client).CreateBox,
		update: (*client.Client).UpdateBox,
		remove: (*client.Client).DeleteBox,
	})
}

func newInventoryCmd(a *app) *cobra.Command {
	cmd := newEntityCmd(a, "inventory", "Manage stock per item", entityOps[model.Inventory]{
		list:   (*client.Client).ListInventory,
		get:    (*client.Client).GetInventory,
		create: (*client.Client).CreateInventory,
		update: (*client.Client).UpdateInventory,
		remove: (*client.Client).DeleteInventory,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Stream inventory changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			return watchInventory(cmd.Context(), a)
		},
	})
	return cmd
}

func newOrdersCmd(a *app) *cobra.Command {
	return newEntityCmd(a, "orders", "Manage orders", entityOps[model.Order]{
		list:   (*client.Client).ListOrders,
		get:    (*client.Client).GetOrder,
		create: (*client.Client).CreateOrder,
		update: (*client.Client).UpdateOrder,
		remove: (*client.Client).DeleteOrder,
	})
}

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Inspect the audit trail"}
	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.signin(cmd.Context()); err != nil {
				return err
			}
			page, err := a.api.ListAudit(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(page)
		},
	}
	list.Flags().IntVar(&opts.Page, "page", 0, "Page number")
	list.Flags().IntVar(&opts.Limit, "limit", 0, "Page size")
	cmd.AddCommand(list)
	return cmd
}
