package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseHexColor(t *testing.T) {
	c := parseHexColor("#FF8000")
	assert.Equal(t, props.Color{Red: 255, Green: 128, Blue: 0}, c)

	// Malformed input falls back to the default brand color.
	for _, s := range []string{"", "#FFF", "FF8000", "#GGGGGG", "#FF80001"} {
		assert.Equal(t, defaultBrand, parseHexColor(s), "input %q", s)
	}
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDecodeAsset(t *testing.T) {
	ext1, w, h, ok := decodeAsset(pngBytes(t, 40, 20))
	require.True(t, ok)
	assert.Equal(t, extension.Png, ext1)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)

	_, _, _, ok = decodeAsset(nil)
	assert.False(t, ok)

	_, _, _, ok = decodeAsset([]byte("definitely not an image"))
	assert.False(t, ok)

	// Decodable but unsupported by the PDF backend.
	_, _, _, ok = decodeAsset(gifBytes(t, 40, 20))
	assert.False(t, ok)
}

func TestHeaderForLogoWidths(t *testing.T) {
	// A square logo at 20mm height needs 20mm of width: two columns.
	cols, ext2 := headerFor(pngBytes(t, 100, 100))
	assert.Equal(t, 2, cols)
	assert.Equal(t, extension.Png, ext2)

	// An extreme banner clamps at four columns.
	cols, _ = headerFor(pngBytes(t, 1000, 100))
	assert.Equal(t, 4, cols)

	// No usable logo collapses the slot.
	cols, _ = headerFor(nil)
	assert.Equal(t, 0, cols)
	cols, _ = headerFor([]byte("garbage"))
	assert.Equal(t, 0, cols)
}

func TestDeductionRowsSkipZeroAmounts(t *testing.T) {
	assert.Empty(t, deductionRows(decimal.Zero, decimal.Zero))

	rows := deductionRows(decimal.NewFromInt(110_000), decimal.Zero)
	require.Len(t, rows, 1)
	assert.Equal(t, "Retención Fuente (-)", rows[0].Label)
	assert.Equal(t, "$110,000", rows[0].Amount)

	rows = deductionRows(decimal.NewFromInt(110_000), decimal.NewFromInt(9_660))
	require.Len(t, rows, 2)
	assert.Equal(t, "ReteICA (-)", rows[1].Label)
	assert.Equal(t, "$9,660", rows[1].Amount)
}

func baseData() DocumentData {
	return DocumentData{
		IssuerName:   "Laura Gómez",
		IssuerTaxID:  "1020304050",
		Slogan:       "Interventoría y diseño",
		Address:      "Cra 43A # 1-50, Medellín",
		Phone:        "3001234567",
		ContactEmail: "laura@example.com",
		BrandColor:   "#2E86C1",

		Number:    "0001",
		IssueDate: "2026-04-02",
		City:      "Medellín",

		ClientName:  "Constructora Andina SAS",
		ClientTaxID: "900123456",
		Description: "Interventoría de obra, marzo",

		Gross:          decimal.NewFromInt(1_000_000),
		WithheldSource: decimal.NewFromInt(110_000),
		WithheldLocal:  decimal.Zero,
		Net:            decimal.NewFromInt(890_000),

		Bank:          "Bancolombia",
		AccountKind:   "savings",
		AccountNumber: "12345678901",
	}
}

func TestGenerateDocument(t *testing.T) {
	provider := New()

	out, err := provider.GenerateDocument(context.Background(), baseData())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateDocumentWithAllAssets(t *testing.T) {
	provider := New()

	data := baseData()
	data.Logo = pngBytes(t, 120, 60)
	data.Signature = pngBytes(t, 200, 80)
	data.QR = pngBytes(t, 64, 64)
	data.Alias = "laura@brebkey"
	data.WithheldLocal = decimal.NewFromInt(9_660)
	data.Net = decimal.NewFromInt(880_340)

	out, err := provider.GenerateDocument(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateDocumentDegradesOnBadAssets(t *testing.T) {
	provider := New()

	data := baseData()
	data.Logo = gifBytes(t, 120, 60)
	data.Signature = []byte{0x00, 0x01}
	data.QR = []byte("also corrupt")
	data.BrandColor = "nonsense"

	// Broken assets degrade to text-only blocks, never a failed render.
	out, err := provider.GenerateDocument(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
