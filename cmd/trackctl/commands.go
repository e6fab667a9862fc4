package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/providers"
	"github.com/safepack/tracking-service/repository"
	"github.com/safepack/tracking-service/services"
	"github.com/spf13/cobra"
)

func newTrackCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "track <tracking-number>",
		Short: "Show a shipment and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup := services.NewLookupService(
				repository.NewMemoryShipmentStore(),
				providers.NewPublicTrackingProvider(opts.publicURL, opts.timeout),
				nil,
				opts.logger(),
			)
			res := lookup.Lookup(cmd.Context(), args[0])
			switch res.State {
			case services.LookupIdle:
				return services.ErrEmptyTrackingID
			case services.LookupNotFound:
				return fmt.Errorf("tracking number %s not found", res.TrackingID)
			case services.LookupError:
				return fmt.Errorf("lookup %s: %w", res.TrackingID, res.Err)
			}
			printShipment(cmd.OutOrStdout(), services.NewShipmentView(*res.Shipment, time.Local))
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all shipments (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := connectAdmin(cmd.Context(), opts)
			if err != nil {
				return err
			}
			list, err := a.admin.Refresh(cmd.Context(), a.session)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), services.FilterShipments(list, search))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by tracking number, recipient, phone, status, origin, destination or service")
	return cmd
}

// shipmentFlags binds the shipment form fields shared by create and edit.
type shipmentFlags struct {
	draft  models.ShipmentDraft
	status string
	ship   string
	eta    string
}

const dateFlagLayout = "2006-01-02"

func (f *shipmentFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.draft.Recipient, "recipient", "", "recipient name")
	fl.StringVar(&f.draft.RecipientPhone, "phone", "", "recipient phone")
	fl.StringVar(&f.draft.Origin, "origin", "", "origin city")
	fl.StringVar(&f.draft.Destination, "destination", "", "destination city")
	fl.StringVar(&f.draft.Service, "service", "", "service level")
	fl.StringVar(&f.ship, "ship-date", "", "ship date (YYYY-MM-DD)")
	fl.StringVar(&f.eta, "eta", "", "estimated delivery (YYYY-MM-DD)")
}

// apply copies the flags that were set onto draft.
func (f *shipmentFlags) apply(cmd *cobra.Command, draft *models.ShipmentDraft) error {
	fl := cmd.Flags()
	for name, dst := range map[string]*string{
		"recipient":   &draft.Recipient,
		"phone":       &draft.RecipientPhone,
		"origin":      &draft.Origin,
		"destination": &draft.Destination,
		"service":     &draft.Service,
	} {
		if fl.Changed(name) {
			v, _ := fl.GetString(name)
			*dst = v
		}
	}
	if f.status != "" {
		st, err := models.ParseStatus(f.status)
		if err != nil {
			return err
		}
		draft.Status = st
	}
	for _, d := range []struct {
		value string
		dst   **time.Time
	}{{f.ship, &draft.ShipDate}, {f.eta, &draft.EstimatedDelivery}} {
		if d.value == "" {
			continue
		}
		t, err := time.Parse(dateFlagLayout, d.value)
		if err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", d.value)
		}
		*d.dst = &t
	}
	return nil
}

func newCreateCmd(opts *options) *cobra.Command {
	var f shipmentFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a shipment (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var draft models.ShipmentDraft
			if err := f.apply(cmd, &draft); err != nil {
				return err
			}
			a, err := connectAdmin(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.admin.Refresh(cmd.Context(), a.session); err != nil {
				return err
			}
			sh, err := a.admin.Create(cmd.Context(), a.session, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", sh.TrackingID)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var f shipmentFlags
	cmd := &cobra.Command{
		Use:   "edit <tracking-number>",
		Short: "Edit a shipment's details (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connectAdmin(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.admin.Refresh(cmd.Context(), a.session); err != nil {
				return err
			}
			current, ok := a.store.Get(args[0])
			if !ok {
				return fmt.Errorf("tracking number %s not found", models.NormalizeTrackingID(args[0]))
			}
			shipDate := current.ShipDate
			draft := models.ShipmentDraft{
				Recipient:         current.Recipient,
				RecipientPhone:    current.RecipientPhone,
				Origin:            current.Origin,
				Destination:       current.Destination,
				Service:           current.Service,
				Status:            current.Status,
				ShipDate:          &shipDate,
				EstimatedDelivery: current.EstimatedDelivery,
			}
			if err := f.apply(cmd, &draft); err != nil {
				return err
			}
			sh, err := a.admin.Edit(cmd.Context(), a.session, args[0], draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", sh.TrackingID)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&f.status, "status", "", "pending, processing, in_transit or delivered")
	return cmd
}

func newUpdateCmd(opts *options) *cobra.Command {
	var draft models.UpdateDraft
	var status string
	cmd := &cobra.Command{
		Use:   "update <tracking-number>",
		Short: "Append a status update to a shipment (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				st, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				draft.Status = st
			}
			a, err := connectAdmin(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.admin.Refresh(cmd.Context(), a.session); err != nil {
				return err
			}
			sh, err := a.admin.AppendUpdate(cmd.Context(), a.session, args[0], draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", sh.TrackingID, sh.Status.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, processing, in_transit or delivered")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "update description")
	cmd.Flags().StringVarP(&draft.Location, "location", "l", "", "where the update happened")
	cmd.Flags().StringVar(&draft.Notes, "notes", "", "free-form notes")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <tracking-number>",
		Short: "Delete a shipment (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connectAdmin(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := a.admin.Remove(cmd.Context(), a.session, args[0], yes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", models.NormalizeTrackingID(args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

type adminClient struct {
	admin   services.AdminService
	store   repository.ShipmentStore
	session *models.Session
}

func connectAdmin(ctx context.Context, opts *options) (*adminClient, error) {
	if err := requireCredentials(opts); err != nil {
		return nil, err
	}
	log := opts.logger()
	auth := services.NewAuthService(
		providers.NewAuthProvider(opts.loginURL, opts.timeout),
		repository.NewMemorySessionStore(),
		0,
		log,
	)
	session, err := auth.Login(ctx, models.LoginRequest{Username: opts.username, Password: opts.password})
	if err != nil {
		return nil, err
	}
	store := repository.NewMemoryShipmentStore()
	admin := services.NewAdminService(
		store,
		providers.NewAdminTrackingProvider(opts.adminURL, opts.timeout),
		nil, "",
		log,
	)
	return &adminClient{admin: admin, store: store, session: session}, nil
}

func printShipment(w io.Writer, v services.ShipmentView) {
	fmt.Fprintf(w, "%s  [%s]\n", v.TrackingID, v.StatusLabel)
	fmt.Fprintf(w, "  %s -> %s  (%s)\n", v.Origin, v.Destination, v.Service)
	fmt.Fprintf(w, "  Shipped: %s\n", v.ShipDateText)
	if v.EstimatedDeliveryText != "" {
		fmt.Fprintf(w, "  Estimated delivery: %s\n", v.EstimatedDeliveryText)
	}
	if v.DeliveryDateText != "" {
		fmt.Fprintf(w, "  Delivered: %s\n", v.DeliveryDateText)
	}
	fmt.Fprintln(w)
	for _, e := range v.Timeline {
		marker := " "
		if e.Current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %-10s  %s", marker, e.When, e.Label, e.Description)
		if e.Location != "" {
			fmt.Fprintf(w, " (%s)", e.Location)
		}
		fmt.Fprintln(w)
	}
}

func printTable(w io.Writer, list []models.Shipment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACKING\tRECIPIENT\tSTATUS\tROUTE\tSERVICE")
	for _, sh := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s -> %s\t%s\n",
			sh.TrackingID, sh.Recipient, sh.Status.Label(), sh.Origin, sh.Destination, sh.Service)
	}
	_ = tw.Flush()
}
