package sse

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/pokerleague/internal/model"
)

// EntryCountsID is the element id swapped by the entry counts fragment
const EntryCountsID = "entry-counts"

// EntryCounts renders the admin page's live counters
func EntryCounts(totals model.EntryTotals) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<span class="count" data-field="entries">%d</span> entries, `+
				`<span class="count" data-field="rebuys">%d</span> rebuys, `+
				`<span class="count" data-field="addons">%d</span> add-ons`,
			totals.Entries, totals.Rebuys, totals.Addons)
		return err
	})
}

// Signal renders a plain text payload for events that only trigger a refetch
func Signal(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(text))
		return err
	})
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + templ.EscapeString(id) + `" hx-swap-oob="true">` + html + `</div>`
}

func render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
