// Package statement renders partner settlement statements as PDF documents.
package statement

import (
	"bytes"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Data struct {
	PlatformName string
	PartnerName  string
	PartnerEmail string
	YearMonth    string
	GeneratedAt  string
	Status       string
	PaymentRef   string

	Lines []Line

	TotalGross    string
	TotalNet      string
	PartnerShare  string
	ManagementFee string
	NetPayable    string
}

type Line struct {
	TrackTitle   string
	TrackArtist  string
	Streams      string
	Downloads    string
	NetRevenue   string
	ShareRate    string
	PartnerShare string
}

func render(data Data) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.PlatformName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, "Settlement Statement", props.Text{
			Size:  13,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New(data.PartnerName, props.Text{Style: fontstyle.Bold}),
			text.New(data.PartnerEmail, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Period: "+data.YearMonth, props.Text{Top: 0}),
			text.New("Status: "+data.Status, props.Text{Top: 4}),
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 8}),
		),
	)

	if data.PaymentRef != "" {
		m.AddRow(8,
			text.NewCol(12, "Payment reference: "+data.PaymentRef, props.Text{Size: 9}),
		)
	}

	m.AddRow(10,
		text.NewCol(4, "Track", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Streams", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Net revenue", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Share %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Your share", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range data.Lines {
		m.AddRow(12,
			col.New(4).Add(
				text.New(line.TrackTitle, props.Text{Size: 9}),
				text.New(line.TrackArtist, props.Text{Size: 7, Top: 4}),
			),
			text.NewCol(2, line.Streams, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.NetRevenue, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.ShareRate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.PartnerShare, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Gross revenue", props.Text{Size: 9}),
		text.NewCol(2, data.TotalGross, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Net revenue", props.Text{Size: 9}),
		text.NewCol(2, data.TotalNet, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Partner share", props.Text{Size: 9}),
		text.NewCol(2, data.PartnerShare, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Management fee", props.Text{Size: 9}),
		text.NewCol(2, "-"+data.ManagementFee, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Net payable", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.NetPayable, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
