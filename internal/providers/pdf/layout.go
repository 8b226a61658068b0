package pdf

import (
	"bytes"
	"strconv"

	"github.com/atomoco/atomo/internal/billing/format"
	"github.com/disintegration/imaging"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// Page geometry in millimeters, A4 portrait. The signature and footer
// blocks are pinned near the page bottom regardless of how much body
// content precedes them.
const (
	pageTopMargin  = 12.0
	signatureTopY  = 210.0
	footerRuleY    = 265.0
	logoHeightMM   = 20.0
	gridColWidthMM = 15.0 // (210 - 2*15) / 12
)

var defaultBrand = props.Color{Red: 46, Green: 134, Blue: 193} // #2E86C1

// parseHexColor parses "#RRGGBB". Malformed input falls back to the
// default brand color rather than failing the render.
func parseHexColor(s string) props.Color {
	if len(s) != 7 || s[0] != '#' {
		return defaultBrand
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return defaultBrand
	}
	return props.Color{
		Red:   int(v >> 16 & 0xFF),
		Green: int(v >> 8 & 0xFF),
		Blue:  int(v & 0xFF),
	}
}

// decodeAsset validates an optional embedded image. A missing or
// malformed asset returns ok=false and the caller collapses its layout
// space; a bad image never fails the whole document.
func decodeAsset(raw []byte) (ext extension.Type, width, height int, ok bool) {
	if len(raw) == 0 {
		return "", 0, 0, false
	}
	e, known := sniffExtension(raw)
	if !known {
		return "", 0, 0, false
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", 0, 0, false
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", 0, 0, false
	}
	return e, bounds.Dx(), bounds.Dy(), true
}

// sniffExtension identifies the embedded format by magic bytes. Only
// PNG and JPEG can be handed to the PDF backend; other formats that
// image decoders happen to accept (GIF, BMP) are treated as unusable.
func sniffExtension(raw []byte) (extension.Type, bool) {
	if len(raw) >= 8 && bytes.Equal(raw[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}) {
		return extension.Png, true
	}
	if len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xD8 {
		return extension.Jpg, true
	}
	return "", false
}

// headerFor decides the header split: how many grid columns the logo
// occupies at its fixed height with preserved aspect ratio. Zero means
// no usable logo and the issuer name starts flush left.
func headerFor(logo []byte) (logoCols int, ext extension.Type) {
	e, w, h, ok := decodeAsset(logo)
	if !ok {
		return 0, ""
	}
	widthMM := logoHeightMM * float64(w) / float64(h)
	cols := int(widthMM/gridColWidthMM) + 1
	if cols > 4 {
		cols = 4
	}
	return cols, e
}

type deductionRow struct {
	Label  string
	Amount string
}

// deductionRows returns one row per positive withholding. A zero amount
// is omitted entirely, never rendered as "$0".
func deductionRows(withheldSource, withheldLocal decimal.Decimal) []deductionRow {
	var rows []deductionRow
	if withheldSource.IsPositive() {
		rows = append(rows, deductionRow{Label: "Retención Fuente (-)", Amount: format.FormatMoney(withheldSource)})
	}
	if withheldLocal.IsPositive() {
		rows = append(rows, deductionRow{Label: "ReteICA (-)", Amount: format.FormatMoney(withheldLocal)})
	}
	return rows
}
