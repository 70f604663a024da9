package label

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

const testTemplate = "^XA^FD{ProductName}^FS^FD{Weight}^FS^FD{Price}^FS^FD{Date}^FS^XZ"

func TestRender(t *testing.T) {
	at := time.Date(2025, 10, 25, 14, 30, 59, 0, time.UTC)

	got := Render(testTemplate, "Vanilla Cake", decimal.RequireFromString("2"), decimal.RequireFromString("9.8"), at, "$")
	want := "^XA^FDVanilla Cake^FS^FD2.00kg^FS^FD$9.80^FS^FD2025-10-25 14:30^FS^XZ"
	if got != want {
		t.Fatalf("unexpected render:\n got: %s\nwant: %s", got, want)
	}
}

func TestRenderLeavesUnknownPlaceholdersAndDoesNotEscape(t *testing.T) {
	got := Render("{Unknown} {ProductName}", "A^B", decimal.Zero, decimal.Zero, time.Time{}, "$")
	if got != "{Unknown} A^B" {
		t.Fatalf("unexpected render: %s", got)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in, currency, want string
	}{
		{"9.8", "$", "$9.80"},
		{"0", "$", "$0.00"},
		{"-1", "$", "-$1.00"},
		{"1234.567", "€", "€1234.57"},
	}

	for _, tt := range tests {
		if got := FormatPrice(decimal.RequireFromString(tt.in), tt.currency); got != tt.want {
			t.Fatalf("FormatPrice(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FileName("Pack", 42, at); got != "Pack_42_20250102_030405.zpl" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestPrintOrSaveSendsToPrinter(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- string(data)
	}()

	dir := t.TempDir()
	printer := NewPrinter(ln.Addr().String(), time.Second, dir, nil)

	outcome, err := printer.PrintOrSave(context.Background(), "Pack", 7, "^XA^XZ")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !outcome.Printed || outcome.File != "" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	select {
	case got := <-received:
		if got != "^XA^XZ" {
			t.Fatalf("printer received %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("printer did not receive label")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no fallback files, got %d", len(entries))
	}
}

func TestPrintOrSaveFallsBackToFile(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	dir := filepath.Join(t.TempDir(), "labels")
	printer := NewPrinter(addr, 200*time.Millisecond, dir, nil)
	printer.now = func() time.Time { return time.Date(2025, 10, 25, 8, 0, 0, 0, time.UTC) }

	outcome, err := printer.PrintOrSave(context.Background(), "Pack", 3, "^XA^XZ")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if outcome.Printed {
		t.Fatalf("expected fallback, got printed")
	}

	want := filepath.Join(dir, "Pack_3_20251025_080000.zpl")
	if outcome.File != want {
		t.Fatalf("file = %q, want %q", outcome.File, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read label file: %v", err)
	}
	if string(data) != "^XA^XZ" {
		t.Fatalf("unexpected file content %q", data)
	}
}

type fakeTemplates struct {
	products  map[int64]catalog.Product
	templates map[int64]catalog.LabelTemplate
}

func (f fakeTemplates) Product(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.NotFound("product", id)
	}
	return p, nil
}

func (f fakeTemplates) LabelTemplate(_ context.Context, id int64) (catalog.LabelTemplate, error) {
	tmpl, ok := f.templates[id]
	if !ok {
		return catalog.LabelTemplate{}, catalog.NotFound("label template", id)
	}
	return tmpl, nil
}

func TestServiceRenderForUsesProductTemplate(t *testing.T) {
	templateID := int64(5)
	source := fakeTemplates{
		products: map[int64]catalog.Product{
			1: {ID: 1, Name: "Vanilla Cake", DefaultLabelTemplateID: &templateID},
			2: {ID: 2, Name: "Plain"},
		},
		templates: map[int64]catalog.LabelTemplate{5: {ID: 5, Content: testTemplate}},
	}
	svc := NewService(source, NewPrinter("", 0, t.TempDir(), nil), "$")

	content, err := svc.RenderFor(context.Background(), Item{
		Kind:      "Pack",
		ID:        1,
		ProductID: 1,
		WeightKg:  decimal.RequireFromString("2"),
		Price:     decimal.RequireFromString("9.80"),
		Date:      time.Date(2025, 10, 25, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "^FDVanilla Cake^FS") || !strings.Contains(content, "$9.80") {
		t.Fatalf("unexpected content %q", content)
	}

	if _, err := svc.RenderFor(context.Background(), Item{ProductID: 2}); err != ErrNoTemplate {
		t.Fatalf("expected ErrNoTemplate, got %v", err)
	}
	if _, err := svc.RenderFor(context.Background(), Item{ProductID: 9}); !catalog.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServicePrintWithoutPrinterSavesFile(t *testing.T) {
	templateID := int64(5)
	source := fakeTemplates{
		products:  map[int64]catalog.Product{1: {ID: 1, Name: "Vanilla Cake", DefaultLabelTemplateID: &templateID}},
		templates: map[int64]catalog.LabelTemplate{5: {ID: 5, Content: testTemplate}},
	}
	dir := t.TempDir()
	svc := NewService(source, NewPrinter("", 0, dir, nil), "$")

	outcome, err := svc.Print(context.Background(), Item{Kind: "Pack", ID: 11, ProductID: 1, WeightKg: decimal.NewFromInt(1), Price: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if outcome.Printed || filepath.Dir(outcome.File) != dir {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}
