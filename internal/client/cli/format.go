package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/saveeat/saveeat-client/internal/client/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// deadlineText renders a deadline relative to now; unknown deadlines
// (free-text on the server side) print as "-".
func deadlineText(ts models.Timestamp, now time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", ts.Local().Format("2006-01-02 15:04"), humanize.RelTime(ts.Time, now, "ago", "from now"))
}

func listingFlags(l models.Listing, now time.Time) string {
	var flags []string
	if l.Urgent {
		flags = append(flags, "URGENT")
	}
	if l.Status != models.ListingExpired && l.Expired(now) {
		flags = append(flags, "past deadline")
	}
	return strings.Join(flags, ",")
}

func printListings(w io.Writer, listings []models.Listing, now time.Time) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tQUANTITY\tSTATUS\tDEADLINE\tFLAGS")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.Quantity, l.Status, deadlineText(l.Deadline, now), listingFlags(l, now))
	}
	tw.Flush()
	fmt.Fprintf(w, "%s listing(s)\n", humanize.Comma(int64(len(listings))))
}

func printListing(w io.Writer, l models.Listing, now time.Time) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", l.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", l.Title)
	fmt.Fprintf(tw, "Quantity:\t%s\n", l.Quantity)
	fmt.Fprintf(tw, "Status:\t%s\n", l.Status)
	fmt.Fprintf(tw, "Deadline:\t%s\n", deadlineText(l.Deadline, now))
	if l.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", l.Description)
	}
	if len(l.Allergens) > 0 {
		fmt.Fprintf(tw, "Allergens:\t%s\n", strings.Join(l.Allergens, ", "))
	}
	if l.Temperature != "" {
		fmt.Fprintf(tw, "Temperature:\t%s\n", l.Temperature)
	}
	if len(l.Categories) > 0 {
		fmt.Fprintf(tw, "Categories:\t%s\n", strings.Join(l.Categories, ", "))
	}
	if flags := listingFlags(l, now); flags != "" {
		fmt.Fprintf(tw, "Flags:\t%s\n", flags)
	}
	tw.Flush()
}

func printReservations(w io.Writer, reservations []models.Reservation, titles map[models.ID]string, now time.Time) {
	if len(reservations) == 0 {
		fmt.Fprintln(w, "No reservations.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tLISTING\tSTATUS\tCREATED")
	for _, r := range reservations {
		listing := string(r.ListingID)
		if title, ok := titles[r.ListingID]; ok {
			listing = fmt.Sprintf("%s (%s)", title, r.ListingID)
		}
		created := "-"
		if !r.CreatedAt.IsZero() {
			created = humanize.RelTime(r.CreatedAt.Time, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, listing, r.Status, created)
	}
	tw.Flush()
}

func printDirectory(w io.Writer, entries []models.DirectoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Directory is empty.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tPHONE\tEMAIL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Address, e.Phone, e.Email)
	}
	tw.Flush()
}

func printImpact(w io.Writer, s models.ImpactSummary) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Meals redistributed:\t%s\n", humanize.Comma(int64(s.CompletedCount)))
	fmt.Fprintf(tw, "Collectors involved:\t%s\n", humanize.Comma(int64(s.CollectorCount)))
	fmt.Fprintf(tw, "CO2 avoided:\t%s kg\n", s.CO2Kg.StringFixed(1))
	tw.Flush()
	if s.Estimated {
		fmt.Fprintln(w, "(estimated locally, the server statistics are unavailable)")
	}
}

func printSession(w io.Writer, sess models.Session) {
	if !sess.Authenticated() {
		fmt.Fprintln(w, "Not logged in.")
		return
	}
	u := sess.User
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	role := string(sess.Role)
	if role == "" {
		role = "not chosen (use: role restaurant|association)"
	}
	fmt.Fprintf(tw, "Role:\t%s\n", role)
	if u.Phone != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", u.Phone)
	}
	if u.Address != "" {
		fmt.Fprintf(tw, "Address:\t%s\n", u.Address)
	}
	if sess.ProfileSync != models.SyncNone {
		fmt.Fprintf(tw, "Profile sync:\t%s\n", sess.ProfileSync)
	}
	tw.Flush()
}

func syncText(status models.SyncStatus) string {
	switch status {
	case models.SyncSynced:
		return "Saved."
	case models.SyncFailed:
		return "Saved locally. The server could not be updated; the change will not be retried."
	default:
		return "Saved locally."
	}
}
