package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

func render(t *testing.T, c templ.Component, v View) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(WithView(context.Background(), v), &buf))
	return buf.String()
}

func TestDocument_Title(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "titled", title: "Login", want: "<title>Login - LedgerDesk</title>"},
		{name: "untitled", title: "", want: "<title>LedgerDesk</title>"},
		{name: "escaped", title: "<b>Jurnal</b>", want: "<title>&lt;b&gt;Jurnal&lt;/b&gt; - LedgerDesk</title>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, Document(templ.NopComponent), View{Title: tt.title})
			assert.Contains(t, out, "<!doctype html>")
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, `href="/static/app.css"`)
		})
	}
}

func TestDashboardLayout_Menu(t *testing.T) {
	entries := []menu.Entry{
		{Header: "Admin"},
		{Divider: true},
		{Title: "Sales Invoice", Icon: "file-invoice", To: "/invoice", Chip: "new"},
		{Title: "Laporan", To: "/laporan", Disabled: true},
		{Title: "Rekonsiliasi Bank", Children: []menu.Entry{{Title: "Rekonsiliasi", To: "/rekon"}}},
		{Title: "Bad link", To: "javascript:alert(1)"},
	}
	v := View{
		CurrentPath: "/invoice",
		Menu:        entries,
		User:        &core.User{Username: "alice", Name: "Alice <A>"},
	}
	out := render(t, Compose(DashboardLayout(), Placeholder("Sales Invoice")), v)

	assert.Contains(t, out, `<li class="ui-menu-header">Admin</li>`)
	assert.Contains(t, out, `<li class="ui-menu-divider"></li>`)
	assert.Contains(t, out, `<li class="ui-menu-item active"><a href="/invoice"><i class="ti ti-file-invoice"></i>Sales Invoice<span class="ui-chip">new</span></a></li>`)
	assert.Contains(t, out, `<li class="ui-menu-item disabled"><a href="/laporan">`)
	assert.Contains(t, out, `<li class="ui-menu-group"><span>Rekonsiliasi Bank</span><ul><li class="ui-menu-item"><a href="/rekon">`)
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `<span class="ui-user">Alice &lt;A&gt;</span>`)
	assert.Contains(t, out, `<section class="ui-content"><div class="ui-page"><h1>Sales Invoice</h1>`)
}

func TestLogin_Prefill(t *testing.T) {
	out := render(t, Compose(BlankLayout(), Login()), View{
		Flash:    "Invalid credentials",
		Username: `al"ice`,
	})

	assert.Contains(t, out, `<div class="ui-blank"><div class="ui-auth">`)
	assert.Contains(t, out, `<p class="ui-alert" role="alert">Invalid credentials</p>`)
	assert.Contains(t, out, `value="al&#34;ice"`)
}

func TestNotFound_EscapesPath(t *testing.T) {
	out := render(t, NotFound(), View{CurrentPath: "/x<script>"})
	assert.Contains(t, out, "<code>/x&lt;script&gt;</code>")
}
