package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/ledgerdesk/internal/menu"
)

// Compose nests components so each one renders the next as its children.
// The first component is the outermost layout.
func Compose(components ...templ.Component) templ.Component {
	if len(components) == 0 {
		return templ.NopComponent
	}
	c := components[len(components)-1]
	for i := len(components) - 2; i >= 0; i-- {
		parent, child := components[i], c
		c = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return parent.Render(templ.WithChildren(ctx, child), w)
		})
	}
	return c
}

func pageTitle(title string) string {
	if title == "" {
		return "LedgerDesk"
	}
	return title + " - LedgerDesk"
}

func menuItemClass(e menu.Entry, current string) string {
	class := "ui-menu-item"
	if e.To == current {
		class += " active"
	}
	if e.Disabled {
		class += " disabled"
	}
	return class
}
