package invoices

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chrisdamba/backoffice/internal/cloudwriter"
	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeS3 struct {
	err         error
	bucket      string
	key         string
	contentType string
	body        []byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(params.Bucket)
	f.key = aws.ToString(params.Key)
	f.contentType = aws.ToString(params.ContentType)
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func newTestService(t *testing.T, client *fakeS3) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	var factory cloudwriter.CloudWriterFactory
	if client != nil {
		factory = cloudwriter.NewS3WriterFactoryWithClient(client)
	}
	svc := NewService(store, factory, "jojo-invoices", zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) }
	return svc, store
}

func moulin() models.InvoiceInput {
	return models.InvoiceInput{
		SupplierName:  "Moulin Sfax",
		InvoiceNumber: "F-2024-118",
		Amount:        decimal.NewFromInt(240),
		BusinessUnit:  models.BusinessUnitRestaurant,
	}
}

func TestCreateInvoiceDefaults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, moulin())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCurrency, invoice.Currency)
	assert.Equal(t, "2024-06-03", invoice.DateReceived)

	_, err = svc.CreateInvoice(ctx, moulin())
	assert.ErrorIs(t, err, models.ErrDuplicateInvoice)

	list, err := svc.ListInvoices(ctx, models.BusinessUnitRestaurant)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, invoice.ID, list[0].ID)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*models.InvoiceInput)
		want   error
	}{
		{"business unit", func(in *models.InvoiceInput) { in.BusinessUnit = "bar" }, models.ErrInvalidBusinessUnit},
		{"supplier", func(in *models.InvoiceInput) { in.SupplierName = " " }, models.ErrInvalidInvoice},
		{"number", func(in *models.InvoiceInput) { in.InvoiceNumber = "" }, models.ErrInvalidInvoice},
		{"amount", func(in *models.InvoiceInput) { in.Amount = decimal.NewFromInt(-1) }, models.ErrInvalidAmount},
		{"date", func(in *models.InvoiceInput) { in.DateReceived = "03/06/2024" }, models.ErrInvalidInvoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := moulin()
			tt.modify(&input)
			_, err := svc.CreateInvoice(ctx, input)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, models.KindValidation, models.KindOf(err))
		})
	}
}

func TestRestockReferencesInvoice(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	inv := inventory.NewService(store, zaptest.NewLogger(t))

	invoice, err := svc.CreateInvoice(ctx, moulin())
	require.NoError(t, err)
	flour, err := inv.CreateIngredient(ctx, models.IngredientInput{Name: "Flour", Unit: "kg", BusinessUnit: models.BusinessUnitRestaurant})
	require.NoError(t, err)
	beans, err := inv.CreateIngredient(ctx, models.IngredientInput{Name: "Beans", Unit: "kg", BusinessUnit: models.BusinessUnitCoffee})
	require.NoError(t, err)

	_, err = inv.Restock(ctx, flour.ID, decimal.NewFromInt(10), decimal.NewFromInt(20), "nope")
	assert.ErrorIs(t, err, models.ErrInvoiceNotFound)
	_, err = inv.Restock(ctx, beans.ID, decimal.NewFromInt(1), decimal.NewFromInt(5), invoice.ID)
	assert.ErrorIs(t, err, models.ErrInvoiceNotFound, "invoices stay within their business unit")

	_, err = inv.Restock(ctx, flour.ID, decimal.NewFromInt(10), decimal.NewFromInt(20), invoice.ID)
	require.NoError(t, err)

	err = svc.DeleteInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, models.ErrInvoiceInUse)

	unused, err := svc.CreateInvoice(ctx, models.InvoiceInput{
		SupplierName: "Laiterie Vitalait", InvoiceNumber: "7781", Amount: decimal.NewFromInt(60), BusinessUnit: models.BusinessUnitCoffee,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteInvoice(ctx, unused.ID))
	_, err = svc.GetInvoice(ctx, unused.ID)
	assert.ErrorIs(t, err, models.ErrInvoiceNotFound)
}

func TestAttachFile(t *testing.T) {
	client := &fakeS3{}
	svc, _ := newTestService(t, client)
	ctx := context.Background()
	invoice, err := svc.CreateInvoice(ctx, moulin())
	require.NoError(t, err)

	got, err := svc.AttachFile(ctx, invoice.ID, "scans/facture 118.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "jojo-invoices", client.bucket)
	assert.Equal(t, "restaurant/1717408800000_facture 118.pdf", client.key)
	assert.Equal(t, "application/pdf", client.contentType)
	assert.Equal(t, "%PDF-1.4", string(client.body))
	assert.Equal(t, "s3://jojo-invoices/restaurant/1717408800000_facture 118.pdf", got.FileURL)

	stored, err := svc.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, got.FileURL, stored.FileURL)

	_, err = svc.AttachFile(ctx, invoice.ID, "empty.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrInvalidFile)
	_, err = svc.AttachFile(ctx, invoice.ID, " ", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrInvalidFile)
	_, err = svc.AttachFile(ctx, "missing", "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrInvoiceNotFound)

	client.err = errors.New("access denied")
	_, err = svc.AttachFile(ctx, invoice.ID, "b.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrUploadFailed)
	assert.Equal(t, models.KindExternalDependency, models.KindOf(err))
}

func TestAttachFileWithoutStorage(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	invoice, err := svc.CreateInvoice(ctx, moulin())
	require.NoError(t, err)

	_, err = svc.AttachFile(ctx, invoice.ID, "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrStorageNotConfigured)
}
