package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/models"
)

func (a *App) Refresh(ctx context.Context, _ []string) error {
	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	err := a.domain.Refresh(rctx)
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Loaded %d listing(s), %d reservation(s), %d directory entries.",
		len(a.domain.Listings()), len(a.domain.Reservations()), len(a.domain.Directory())))
	return nil
}

func (a *App) List(_ context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	view := "all"
	if len(args) == 1 {
		view = strings.ToLower(args[0])
	}

	var listings []models.Listing
	switch view {
	case "all":
		listings = a.domain.Listings()
	case "available":
		listings = a.domain.AvailableListings()
	case "urgent":
		listings = a.domain.UrgentListings()
	case "collectable":
		listings = a.domain.CollectableListings(a.now())
	case "mine":
		listings = a.domain.ListingsByOwner(a.sessions.Session().User.ID)
	default:
		return errUsage
	}
	if savedAt, stale := a.domain.Stale(); stale {
		printlnFn("Offline copy from", humanize.Time(savedAt)+".")
	} else if err := a.domain.Err(); err != nil {
		printlnFn("Warning: last refresh failed:", client.Message(err))
	}
	printListings(a.out, listings, a.now())
	return nil
}

func (a *App) Show(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	for _, l := range a.domain.Listings() {
		if l.ID == models.ID(args[0]) {
			printListing(a.out, l, a.now())
			printReservations(a.out, a.domain.ReservationsForListing(l.ID), nil, a.now())
			return nil
		}
	}
	printlnFn("No listing with ID", args[0])
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	var filter models.ListingFilter
	var words []string
	for _, arg := range args {
		switch key, value, _ := strings.Cut(arg, "="); {
		case key == "category" && value != "":
			filter.Category = value
		case key == "status" && value != "":
			filter.Status = models.ListingStatus(value)
		case arg == "urgent":
			urgent := true
			filter.Urgent = &urgent
		default:
			words = append(words, arg)
		}
	}
	filter.Query = strings.Join(words, " ")

	listings, err := a.domain.SearchListings(ctx, filter)
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printListings(a.out, listings, a.now())
	return nil
}

func (a *App) AddListing(ctx context.Context, _ []string) error {
	title, err := GetSimpleText(a.reader, "Title:", a.out)
	if err != nil {
		return err
	}
	quantity, err := GetSimpleText(a.reader, "Quantity (e.g. 12 portions):", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description (optional):", a.out)
	if err != nil {
		return err
	}
	when, err := GetSimpleText(a.reader, "Collect before (2026-10-20 18:00, 18:00 or 3h):", a.out)
	if err != nil {
		return err
	}
	deadline, err := parseDeadline(when, a.now())
	if err != nil {
		printlnFn(err.Error())
		return nil
	}
	urgentText, err := GetSimpleText(a.reader, "Urgent? (y/N):", a.out)
	if err != nil {
		return err
	}
	temperature, err := GetSimpleText(a.reader, "Temperature (ambient, chilled, frozen, hot; optional):", a.out)
	if err != nil {
		return err
	}
	allergens, err := GetSimpleText(a.reader, "Allergens, comma separated (optional):", a.out)
	if err != nil {
		return err
	}
	categories, err := GetSimpleText(a.reader, "Categories, comma separated (optional):", a.out)
	if err != nil {
		return err
	}

	l, err := a.domain.CreateListing(ctx, models.ListingDraft{
		Title:       title,
		Quantity:    quantity,
		Description: description,
		Deadline:    deadline,
		Urgent:      yes(urgentText),
		Temperature: models.TemperatureClass(strings.ToLower(temperature)),
		Allergens:   splitList(allergens),
		Categories:  splitList(categories),
	})
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn("Listing published with ID", l.ID.String())
	return nil
}

func (a *App) EditListing(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	kv, err := parseAssignments(args[1:])
	if err != nil {
		printlnFn(err.Error())
		return errUsage
	}
	patch, err := listingPatch(kv, a.now)
	if err != nil {
		printlnFn(err.Error())
		return nil
	}

	l, err := a.domain.UpdateListing(ctx, models.ID(args[0]), patch)
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printListing(a.out, l, a.now())
	return nil
}

func listingPatch(kv map[string]string, now func() time.Time) (models.ListingPatch, error) {
	var p models.ListingPatch
	for key, value := range kv {
		value := strings.TrimSpace(value)
		switch key {
		case "title":
			p.Title = &value
		case "quantity":
			p.Quantity = &value
		case "description":
			p.Description = &value
		case "deadline":
			ts, err := parseDeadline(value, now())
			if err != nil {
				return p, err
			}
			p.Deadline = &ts
		case "urgent":
			urgent, err := strconv.ParseBool(value)
			if err != nil {
				urgent = yes(value)
			}
			p.Urgent = &urgent
		case "temperature":
			t := models.TemperatureClass(strings.ToLower(value))
			p.Temperature = &t
		case "allergens":
			p.Allergens = splitList(value)
		case "categories":
			p.Categories = splitList(value)
		default:
			return p, fmt.Errorf("unknown listing field %q", key)
		}
	}
	return p, nil
}

func (a *App) ListingStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	l, err := a.domain.UpdateListingStatus(ctx, models.ID(args[0]), models.ListingStatus(strings.ToLower(args[1])))
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Listing %s is now %s.", l.ID, l.Status))
	return nil
}

func (a *App) DeleteListing(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	err := a.domain.DeleteListing(ctx, models.ID(args[0]))
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn("Listing deleted.")
	return nil
}

func (a *App) Reserve(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	r, err := a.domain.Reserve(ctx, models.ID(args[0]), strings.Join(args[1:], " "))
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn("Reserved. Reservation ID", r.ID.String())
	return nil
}

func (a *App) Reservations(_ context.Context, args []string) error {
	var reservations []models.Reservation
	switch len(args) {
	case 0:
		sess := a.sessions.Session()
		if sess.Role == models.RoleAssociation {
			reservations = a.domain.ActiveReservationsFor(sess.User.ID)
		} else {
			reservations = a.domain.Reservations()
		}
	case 1:
		reservations = a.domain.ReservationsForListing(models.ID(args[0]))
	default:
		return errUsage
	}

	titles := make(map[models.ID]string)
	for _, l := range a.domain.Listings() {
		titles[l.ID] = l.Title
	}
	printReservations(a.out, reservations, titles, a.now())
	return nil
}

func (a *App) Cancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	_, err := a.domain.CancelReservation(ctx, models.ID(args[0]))
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn("Reservation cancelled. The listing is available again.")
	return nil
}

func (a *App) Collect(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	_, err := a.domain.ConfirmCollection(ctx, models.ID(args[0]))
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn("Collection confirmed. Thank you!")
	return nil
}

func (a *App) Directory(_ context.Context, _ []string) error {
	printDirectory(a.out, a.domain.Directory())
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	printImpact(a.out, a.domain.ImpactSummary(ctx))
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	err := a.documents.Upload(ctx, models.DocumentUpload{
		Type:    models.DocumentType(strings.ToLower(args[0])),
		Path:    args[1],
		Comment: strings.Join(args[2:], " "),
	})
	a.trackErr(ctx, err)
	if err != nil {
		return err
	}
	printlnFn("Document uploaded. It will be reviewed shortly.")
	return nil
}

func yes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "o", "oui", "true", "1":
		return true
	}
	return false
}
