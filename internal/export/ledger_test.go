package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chrisdamba/backoffice/internal/cloudwriter"
	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/chrisdamba/backoffice/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"go.uber.org/zap/zaptest"
)

type fakeS3 struct {
	bucket      string
	key         string
	contentType string
	body        []byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
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

func seedLedger(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	svc := inventory.NewService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Invoices().Create(ctx, &models.SupplierInvoice{
			ID: "INV-7", SupplierName: "Sucre de Tunisie", InvoiceNumber: "7", Amount: decimal.NewFromInt(25),
			Currency: models.DefaultCurrency, DateReceived: "2024-06-28", BusinessUnit: models.BusinessUnitCoffee,
		})
	})
	require.NoError(t, err)

	sugar, err := svc.CreateIngredient(ctx, models.IngredientInput{
		Name: "Sugar", Unit: "kg", MinQuantity: decimal.NewFromInt(2), BusinessUnit: models.BusinessUnitCoffee,
	})
	require.NoError(t, err)
	_, err = svc.Restock(ctx, sugar.ID, decimal.NewFromInt(10), decimal.NewFromInt(25), "INV-7")
	require.NoError(t, err)

	_, err = svc.CreateIngredient(ctx, models.IngredientInput{
		Name: "Tomato", Unit: "kg", BusinessUnit: models.BusinessUnitRestaurant,
	})
	require.NoError(t, err)
	return store
}

func TestExportLedgerCSV(t *testing.T) {
	store := seedLedger(t)
	dir := t.TempDir()
	exporter := NewExporter(store, nil, dir, zaptest.NewLogger(t))
	exporter.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }

	result, err := exporter.ExportLedger(context.Background(), models.BusinessUnitCoffee, "CSV", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, filepath.Join(dir, "coffee", "ledger-20240701-120000.csv"), result.Location)

	f, err := os.Open(result.Location)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "CREATE", records[1][5])
	assert.Equal(t, "RESTOCK", records[2][5])
	assert.Equal(t, "Sugar", records[2][3])
	assert.Equal(t, "10", records[2][6])
	assert.Equal(t, "25", records[2][7])
	assert.Equal(t, "INV-7", records[2][10])
}

func TestExportLedgerParquet(t *testing.T) {
	store := seedLedger(t)
	path := filepath.Join(t.TempDir(), "ledger.parquet")
	exporter := NewExporter(store, nil, "", zaptest.NewLogger(t))

	result, err := exporter.ExportLedger(context.Background(), models.BusinessUnitCoffee, FormatParquet, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(ledgerRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	require.Equal(t, int64(2), pr.GetNumRows())

	rows := make([]ledgerRow, 2)
	require.NoError(t, pr.Read(&rows))
	assert.Equal(t, "CREATE", rows[0].MovementType)
	assert.Equal(t, "RESTOCK", rows[1].MovementType)
	assert.Equal(t, "25", rows[1].AmountDelta)
	assert.Less(t, rows[0].Seq, rows[1].Seq)
}

func TestExportLedgerToS3(t *testing.T) {
	store := seedLedger(t)
	client := &fakeS3{}
	factory := cloudwriter.NewS3WriterFactoryWithClient(client)
	exporter := NewExporter(store, factory, "", zaptest.NewLogger(t))

	result, err := exporter.ExportLedger(context.Background(), models.BusinessUnitRestaurant, FormatCSV, "s3://jojo-exports/ledger/restaurant.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "jojo-exports", client.bucket)
	assert.Equal(t, "ledger/restaurant.csv", client.key)
	assert.Equal(t, "text/csv", client.contentType)

	records, err := csv.NewReader(bytes.NewReader(client.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Tomato", records[1][3])
}

func TestExportLedgerRejectsBadInput(t *testing.T) {
	exporter := NewExporter(memory.NewStore(), nil, t.TempDir(), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := exporter.ExportLedger(ctx, "bar", FormatCSV, "")
	assert.ErrorIs(t, err, models.ErrInvalidBusinessUnit)

	_, err = exporter.ExportLedger(ctx, models.BusinessUnitCoffee, "xlsx", "")
	assert.ErrorContains(t, err, "unsupported export format")

	_, err = exporter.ExportLedger(ctx, models.BusinessUnitCoffee, FormatCSV, "s3://bucket/key.csv")
	assert.ErrorContains(t, err, "cloud storage is not configured")
}
