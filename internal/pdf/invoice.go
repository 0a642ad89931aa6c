// Package pdf renders sales invoices as PDF documents.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/andy/timesheet/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	small = props.Text{Size: 9}
	right = props.Text{Size: 9, Align: align.Right}
	bold  = props.Text{Size: 9, Style: fontstyle.Bold}
)

// RenderInvoice lays out the invoice header, one row per item and the
// billed time log rows, and returns the PDF bytes.
func RenderInvoice(inv *domain.SalesInvoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "Sales Invoice "+inv.Name, props.Text{
		Size:  18,
		Style: fontstyle.Bold,
	}))

	due := ""
	if inv.DueDate != nil {
		due = inv.DueDate.Format(dateLayout)
	}
	m.AddRow(22,
		col.New(6).Add(
			text.New("Customer: "+inv.Customer, props.Text{Style: fontstyle.Bold}),
			text.New("Company: "+inv.Company, props.Text{Top: 5}),
			text.New("Project: "+inv.Project, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Posting date: "+inv.PostingDate.Format(dateLayout), props.Text{Align: align.Right}),
			text.New("Due date: "+due, props.Text{Top: 5, Align: align.Right}),
			text.New("Status: "+string(inv.Status), props.Text{Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(1, "#", bold),
		text.NewCol(5, "Description", bold),
		text.NewCol(2, "Hours", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range inv.Items {
		description := item.Description
		if item.ItemCode != "" {
			description = item.ItemCode + ": " + description
		}
		m.AddRow(7,
			text.NewCol(1, fmt.Sprintf("%d", item.Idx), small),
			text.NewCol(5, description, small),
			text.NewCol(2, item.Qty.StringFixed(2), right),
			text.NewCol(2, item.Rate.StringFixed(2), right),
			text.NewCol(2, item.Amount.StringFixed(2), right),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(8,
		col.New(6),
		text.NewCol(2, "Total hours", bold),
		text.NewCol(4, inv.TotalBillingHours.StringFixed(2), right),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(2, "Grand total", bold),
		text.NewCol(4, inv.GrandTotal.StringFixed(2)+" "+inv.Currency, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	if len(inv.Timesheets) > 0 {
		m.AddRow(12, text.NewCol(12, "Billed time", props.Text{Size: 11, Style: fontstyle.Bold, Top: 4}))
		m.AddRow(7,
			text.NewCol(3, "Timesheet", bold),
			text.NewCol(3, "Activity", bold),
			text.NewCol(2, "Project", bold),
			text.NewCol(2, "Hours", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		)
		for _, row := range inv.Timesheets {
			m.AddRow(6,
				text.NewCol(3, row.Timesheet, small),
				text.NewCol(3, row.ActivityType, small),
				text.NewCol(2, row.Project, small),
				text.NewCol(2, row.BillingHours.StringFixed(2), right),
				text.NewCol(2, row.BillingAmount.StringFixed(2), right),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.Name, err)
	}
	return doc.GetBytes(), nil
}

// WriteInvoice renders the invoice into dir as <name>.pdf and returns the path
func WriteInvoice(dir string, inv *domain.SalesInvoice) (string, error) {
	data, err := RenderInvoice(inv)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, inv.Name+".pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
