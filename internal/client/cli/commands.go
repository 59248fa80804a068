package cli

func (a *App) commands() []command {
	return []command{
		{name: "register", usage: "register", help: "create an account", run: a.Register},
		{name: "login", usage: "login", help: "authenticate", run: a.Login},
		{name: "logout", usage: "logout", help: "sign out and forget the stored session", auth: true, run: a.Logout},
		{name: "whoami", usage: "whoami", help: "show the current profile", auth: true, run: a.WhoAmI},
		{name: "role", usage: "role restaurant|association", help: "choose your role (once)", auth: true, run: a.SetRole},
		{name: "profile", usage: "profile key=value...", help: "edit name, email, phone or address", auth: true, run: a.EditProfile},

		{name: "refresh", usage: "refresh", help: "reload listings, reservations and directory", auth: true, run: a.Refresh},
		{name: "list", usage: "list [available|urgent|collectable|mine]", help: "list cached listings", auth: true, run: a.List},
		{name: "show", usage: "show ID", help: "show a single listing", auth: true, run: a.Show},
		{name: "search", usage: "search TEXT [category=C] [urgent]", help: "search listings on the server", auth: true, run: a.Search},
		{name: "add", usage: "add", help: "publish a listing (restaurant)", auth: true, run: a.AddListing},
		{name: "edit", usage: "edit ID key=value...", help: "edit an open listing (restaurant)", auth: true, run: a.EditListing},
		{name: "status", usage: "status ID expired", help: "withdraw an open listing", auth: true, run: a.ListingStatus},
		{name: "delete", usage: "delete ID", help: "withdraw an open listing (restaurant)", auth: true, run: a.DeleteListing},
		{name: "reserve", usage: "reserve ID [comment]", help: "reserve a listing (association)", auth: true, run: a.Reserve},
		{name: "reservations", usage: "reservations [LISTING_ID]", help: "list reservations", auth: true, run: a.Reservations},
		{name: "cancel", usage: "cancel RESERVATION_ID", help: "cancel a pending reservation", auth: true, run: a.Cancel},
		{name: "collect", usage: "collect RESERVATION_ID", help: "confirm a collection", auth: true, run: a.Collect},
		{name: "directory", usage: "directory", help: "list restaurants or associations", auth: true, run: a.Directory},
		{name: "stats", usage: "stats", help: "show the redistribution impact", auth: true, run: a.Stats},
		{name: "upload", usage: "upload TYPE PATH [comment]", help: "send a verification document (identity, kbis, association_statute, other)", auth: true, run: a.Upload},
	}
}
