package routes

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/ledgerdesk/internal/ui/pages"
)

// Well-known route names.
const (
	NameNotFound  = "NotFound"
	NameDashboard = "Dashboard"
	NameLogin     = "Authentication"
	NameRegister  = "Register"
	NameError     = "Error 404"
)

// Definitions returns the dashboard route trees: the catch-all, the
// authenticated dashboard subtree and the public /auth subtree.
// Each call builds fresh trees with unloaded components.
func Definitions() []*Route {
	page := func(name, path, title string) *Route {
		return &Route{
			Name:      name,
			Path:      path,
			Meta:      Meta{Title: title},
			Component: Of(func() templ.Component { return pages.Placeholder(title) }),
		}
	}

	dashboard := &Route{
		Path:      "/main",
		Redirect:  "/",
		Meta:      Meta{RequiresAuth: Bool(true)},
		Component: Of(pages.DashboardLayout),
		Children: []*Route{
			page(NameDashboard, "/", "Dashboard"),
			page("JobOrder", "/job-order", "Job Order"),
			page("Kasbon", "/kasbon", "Kasbon & Biaya"),
			page("Invoice", "/invoice", "Sales Invoice"),
			page("Penerimaan", "/penerimaan", "Penerimaan Lain"),
			page("Transfer", "/transfer", "Transfer Bank"),
			page("Pelunasan", "/pelunasan", "Pelunasan"),
			page("Laporan", "/laporan", "Laporan"),
			page("Users", "/users", "Manajemen User"),
			page("AccurateSettings", "/settings", "Konfigurasi Sistem"),
			page("Rekon", "/rekon", "Rekonsiliasi Bank"),
			page("RekonSettings", "/rekon/settings", "Pengaturan Rekon"),
		},
	}

	public := &Route{
		Path:      "/auth",
		Meta:      Meta{RequiresAuth: Bool(false)},
		Component: Of(pages.BlankLayout),
		Children: []*Route{
			{Name: NameLogin, Path: "login", Meta: Meta{Title: "Login"}, Component: Of(pages.Login)},
			{Name: NameRegister, Path: "register", Meta: Meta{Title: "Register"}, Component: Of(pages.Register)},
			{Name: NameError, Path: "error", Meta: Meta{Title: "Not Found"}, Component: Of(pages.NotFound)},
		},
	}

	notFound := &Route{
		Name:      NameNotFound,
		Path:      CatchAllPath,
		Meta:      Meta{Title: "Not Found"},
		Component: Of(pages.NotFound),
	}

	return []*Route{notFound, dashboard, public}
}
