package menu

// Visible filters entries down to what a user with the given access check may
// see. Entries whose capability is denied are dropped, submenus that end up
// empty are dropped, and section headers with nothing visible under them are
// dropped.
func Visible(entries []Entry, hasAccess func(capability string) bool) []Entry {
	filtered := filter(entries, hasAccess)

	out := make([]Entry, 0, len(filtered))
	for i, e := range filtered {
		if e.IsHeader() && !sectionHasItems(filtered[i+1:]) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func filter(entries []Entry, hasAccess func(string) bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Capability != "" && (hasAccess == nil || !hasAccess(e.Capability)) {
			continue
		}
		if e.IsSubmenu() {
			children := filter(e.Children, hasAccess)
			if len(children) == 0 {
				continue
			}
			e.Children = children
		}
		out = append(out, e)
	}
	return out
}

// sectionHasItems reports whether rest contains a non-header entry before the next header.
func sectionHasItems(rest []Entry) bool {
	for _, e := range rest {
		if e.IsHeader() {
			return false
		}
		if !e.Divider {
			return true
		}
	}
	return false
}
