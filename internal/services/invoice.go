package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// InvoiceRenderer produces the PDF invoice for a completed booking.
type InvoiceRenderer struct {
	baseURL string
}

func NewInvoiceRenderer(baseURL string) *InvoiceRenderer {
	return &InvoiceRenderer{baseURL: baseURL}
}

func InvoiceKey(bookingID string) string {
	return "invoices/" + bookingID + ".pdf"
}

func (r *InvoiceRenderer) Render(b *models.Booking) ([]byte, error) {
	if b.Status != models.BookingStatusCompleted || b.CompletedAt == nil {
		return nil, fmt.Errorf("booking %s is not completed", b.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "HOMEFIX INVOICE")
	pdf.Ln(18)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 48, "F")
	pdf.SetXY(20, yStart+6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		"Booking ID: " + b.ID,
		"Order ID: " + b.OrderID,
		"Payment ID: " + b.PaymentID,
		"Completed: " + b.CompletedAt.UTC().Format(time.RFC1123),
	} {
		pdf.SetX(20)
		pdf.Cell(0, 7, line)
		pdf.Ln(6)
	}

	qrPNG, err := qrcode.Encode(fmt.Sprintf("%s/api/bookings/%s", r.baseURL, b.ID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 145, yStart, 45, 0, false, opts, 0, "")
	pdf.SetY(yStart + 56)

	section(pdf, "SERVICE")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("%s (%s)", b.ServiceName, b.ServiceCategory))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Scheduled: %s %s", b.Date, b.Time))
	pdf.Ln(7)
	pdf.MultiCell(0, 7, "Location: "+b.Location, "", "", false)
	pdf.Ln(4)

	section(pdf, "BILLED TO")
	pdf.SetFont("Helvetica", "", 12)
	if b.ContactName != "" {
		pdf.Cell(0, 8, b.ContactName)
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, b.ContactMobile)
	pdf.Ln(7)
	if b.ContactEmail != "" {
		pdf.Cell(0, 8, b.ContactEmail)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	section(pdf, "PAYMENT")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Total paid: %s %.2f", b.Currency, b.Amount), "", 1, "L", false, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "HomeFix Limited. Thank you for your business.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
}

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// InvoiceArchiver stores the invoice of every booking that completes.
type InvoiceArchiver struct {
	renderer *InvoiceRenderer
	store    ObjectStore
	log      *slog.Logger
}

func NewInvoiceArchiver(renderer *InvoiceRenderer, store ObjectStore, log *slog.Logger) *InvoiceArchiver {
	return &InvoiceArchiver{renderer: renderer, store: store, log: log}
}

func (a *InvoiceArchiver) Name() string { return "invoice" }

func (a *InvoiceArchiver) Deliver(ctx context.Context, e models.BookingEvent) error {
	if e.Type != models.EventBookingCompleted {
		return nil
	}
	pdf, err := a.renderer.Render(&e.Booking)
	if err != nil {
		return err
	}
	url, err := a.store.Put(ctx, InvoiceKey(e.Booking.ID), "application/pdf", pdf)
	if err != nil {
		return err
	}
	a.log.Info("invoice archived", "bookingId", e.Booking.ID, "url", url)
	return nil
}
