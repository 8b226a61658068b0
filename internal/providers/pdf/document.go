package pdf

import (
	"context"
	"fmt"

	"github.com/atomoco/atomo/internal/billing/format"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	inkDark  = props.Color{Red: 50, Green: 50, Blue: 50}
	inkMuted = props.Color{Red: 100, Green: 100, Blue: 100}
	inkWhite = props.Color{Red: 255, Green: 255, Blue: 255}
	boxFill  = props.Color{Red: 248, Green: 249, Blue: 250}
	boxEdge  = props.Color{Red: 220, Green: 220, Blue: 220}
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

// page tracks the vertical cursor so the signature and footer blocks
// can be pinned at fixed offsets with computed spacer rows.
type page struct {
	m core.Maroto
	y float64
}

func (p *page) addRow(height float64, cols ...core.Col) {
	p.m.AddRow(height, cols...)
	p.y += height
}

func (p *page) spacerTo(target float64) {
	if gap := target - p.y; gap > 0 {
		p.addRow(gap, col.New(12))
	}
}

func (r *MarotoProvider) GenerateDocument(ctx context.Context, data DocumentData) ([]byte, error) {
	brand := parseHexColor(data.BrandColor)

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(pageTopMargin).
		WithRightMargin(15).
		WithDisableAutoPageBreak(true).
		Build()

	p := &page{m: maroto.New(cfg), y: pageTopMargin}

	r.header(p, data, brand)
	r.title(p, data, brand)
	r.clientBox(p, data)
	r.itemTable(p, data, brand)
	r.paymentBlock(p, data)
	r.signatureBlock(p, data)
	r.footer(p, data, brand)

	doc, err := p.m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func (r *MarotoProvider) header(p *page, data DocumentData, brand props.Color) {
	nameText := text.New(data.IssuerName, props.Text{
		Top:   3,
		Size:  16,
		Style: fontstyle.Bold,
		Color: &inkDark,
	})
	sloganText := text.New(data.Slogan, props.Text{
		Top:   11,
		Size:  10,
		Style: fontstyle.Italic,
		Color: &inkMuted,
	})

	logoCols, ext := headerFor(data.Logo)
	if logoCols > 0 {
		p.addRow(23,
			image.NewFromBytesCol(logoCols, data.Logo, ext, props.Rect{Percent: 90}),
			col.New(12-logoCols).Add(nameText, sloganText),
		)
	} else {
		p.addRow(23, col.New(12).Add(nameText, sloganText))
	}

	p.addRow(1, line.NewCol(12, props.Line{Color: &brand, Thickness: 0.5}))
	p.addRow(2, col.New(12))

	p.addRow(6, text.NewCol(12,
		fmt.Sprintf("Fecha: %s | Ciudad: %s", data.IssueDate, data.City),
		props.Text{Size: 10, Align: align.Right},
	))
	p.addRow(10, col.New(12))
}

func (r *MarotoProvider) title(p *page, data DocumentData, brand props.Color) {
	p.addRow(8, text.NewCol(12,
		fmt.Sprintf("CUENTA DE COBRO N° %s", data.Number),
		props.Text{Size: 14, Style: fontstyle.Bold, Color: &brand},
	))
	p.addRow(5, text.NewCol(12,
		"Documento soporte para no obligados a facturar",
		props.Text{Size: 9, Color: &inkMuted},
	))
	p.addRow(5, col.New(12))
}

func (r *MarotoProvider) clientBox(p *page, data DocumentData) {
	boxStyle := &props.Cell{
		BackgroundColor: &boxFill,
		BorderColor:     &boxEdge,
		BorderType:      border.Full,
	}
	p.addRow(25,
		col.New(12).Add(
			text.New("CLIENTE: "+data.ClientName, props.Text{
				Top: 4, Left: 5, Size: 10, Style: fontstyle.Bold,
			}),
			text.New("NIT/CC: "+data.ClientTaxID, props.Text{
				Top: 12, Left: 5, Size: 10,
			}),
		).WithStyle(boxStyle),
	)
	p.addRow(10, col.New(12))
}

func (r *MarotoProvider) itemTable(p *page, data DocumentData, brand props.Color) {
	headStyle := &props.Cell{BackgroundColor: &brand}
	p.addRow(8,
		text.NewCol(8, "Descripción del Servicio", props.Text{
			Top: 2, Left: 2, Size: 10, Style: fontstyle.Bold, Color: &inkWhite,
		}).WithStyle(headStyle),
		text.NewCol(4, "Valor Total", props.Text{
			Top: 2, Right: 2, Size: 10, Style: fontstyle.Bold, Color: &inkWhite, Align: align.Right,
		}).WithStyle(headStyle),
	)

	cellStyle := &props.Cell{BorderColor: &boxEdge, BorderType: border.Full}
	p.addRow(12,
		text.NewCol(8, data.Description, props.Text{
			Top: 2, Left: 2, Size: 10,
		}).WithStyle(cellStyle),
		text.NewCol(4, format.FormatMoney(data.Gross), props.Text{
			Top: 2, Right: 2, Size: 10, Align: align.Right,
		}).WithStyle(cellStyle),
	)
	p.addRow(5, col.New(12))

	for _, row := range deductionRows(data.WithheldSource, data.WithheldLocal) {
		p.addRow(6,
			col.New(5),
			text.NewCol(3, row.Label, props.Text{Size: 10, Align: align.Right}),
			text.NewCol(4, row.Amount, props.Text{
				Top: 1, Right: 2, Size: 10, Align: align.Right,
			}).WithStyle(cellStyle),
		)
	}

	p.addRow(10,
		col.New(5),
		text.NewCol(3, "NETO A PAGAR", props.Text{
			Top: 2, Size: 12, Style: fontstyle.Bold, Color: &brand, Align: align.Right,
		}),
		text.NewCol(4, format.FormatMoney(data.Net), props.Text{
			Top: 2, Right: 2, Size: 12, Style: fontstyle.Bold, Color: &brand, Align: align.Right,
		}).WithStyle(cellStyle),
	)
	p.addRow(10, col.New(12))
}

func (r *MarotoProvider) paymentBlock(p *page, data DocumentData) {
	p.addRow(6, text.NewCol(12, "DATOS PARA PAGO:", props.Text{
		Size: 10, Style: fontstyle.Bold,
	}))

	bankLines := []core.Component{
		text.New("Banco: "+data.Bank, props.Text{Size: 10}),
		text.New("Tipo: "+data.AccountKind, props.Text{Top: 5, Size: 10}),
		text.New("No. Cuenta: "+data.AccountNumber, props.Text{Top: 10, Size: 10}),
	}
	if data.Alias != "" {
		bankLines = append(bankLines, text.New("Llave Bre-B: "+data.Alias, props.Text{Top: 15, Size: 10}))
	}

	ext, _, _, qrOK := decodeAsset(data.QR)
	if qrOK {
		p.addRow(32,
			col.New(8).Add(bankLines...),
			image.NewFromBytesCol(2, data.QR, ext, props.Rect{Percent: 100}),
			col.New(2),
		)
		p.addRow(5,
			col.New(8),
			text.NewCol(2, "Escanear", props.Text{Size: 9, Align: align.Center}),
			col.New(2),
		)
	} else {
		p.addRow(22, col.New(12).Add(bankLines...))
	}
}

func (r *MarotoProvider) signatureBlock(p *page, data DocumentData) {
	p.spacerTo(signatureTopY)

	ext, _, _, sigOK := decodeAsset(data.Signature)
	if sigOK {
		p.addRow(15,
			image.NewFromBytesCol(3, data.Signature, ext, props.Rect{Percent: 100}),
			col.New(9),
		)
	} else {
		p.addRow(15, col.New(12))
	}

	black := props.Color{}
	p.addRow(1,
		line.NewCol(4, props.Line{Color: &black, Thickness: 0.3}),
		col.New(8),
	)
	p.addRow(5,
		text.NewCol(4, "Firma Autorizada", props.Text{Size: 10, Align: align.Center}),
		col.New(8),
	)
	p.addRow(5,
		text.NewCol(4, "CC/NIT: "+data.IssuerTaxID, props.Text{Size: 8, Align: align.Center}),
		col.New(8),
	)
}

func (r *MarotoProvider) footer(p *page, data DocumentData, brand props.Color) {
	p.spacerTo(footerRuleY)
	p.addRow(1, line.NewCol(12, props.Line{Color: &brand, Thickness: 0.5}))
	p.addRow(6, text.NewCol(12,
		fmt.Sprintf("%s | Tel: %s | %s", data.Address, data.Phone, data.ContactEmail),
		props.Text{Top: 2, Size: 8, Color: &inkMuted, Align: align.Center},
	))
}
