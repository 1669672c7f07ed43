package dbtest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/db/dbtest"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/money"
)

func TestExecTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	fake := dbtest.New()
	p, err := fake.CreateProduct(ctx, dbgen.CreateProductParams{Name: "Watch", ForeignCost: money.MustParse("10"), Stock: 3})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = fake.ExecTx(ctx, func(q dbgen.Querier) error {
		if _, err := q.DecrementStock(ctx, dbgen.DecrementStockParams{ID: p.ID, Qty: 2}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := fake.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, got.Stock)
}

func TestExecTxPublishesOnSuccess(t *testing.T) {
	ctx := context.Background()
	fake := dbtest.New()
	err := fake.ExecTx(ctx, func(q dbgen.Querier) error {
		_, err := q.CreateCategory(ctx, "Perfumes")
		return err
	})
	require.NoError(t, err)
	cats, err := fake.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
}

func TestDecrementStockIsConditional(t *testing.T) {
	ctx := context.Background()
	fake := dbtest.New()
	p, err := fake.CreateProduct(ctx, dbgen.CreateProductParams{Name: "Watch", ForeignCost: money.MustParse("10"), Stock: 1})
	require.NoError(t, err)

	_, err = fake.DecrementStock(ctx, dbgen.DecrementStockParams{ID: p.ID, Qty: 2})
	require.ErrorIs(t, err, pgx.ErrNoRows)
	left, err := fake.DecrementStock(ctx, dbgen.DecrementStockParams{ID: p.ID, Qty: 1})
	require.NoError(t, err)
	require.EqualValues(t, 0, left)
}

func TestConstraintsSurfaceAsPgErrors(t *testing.T) {
	ctx := context.Background()
	fake := dbtest.New()
	_, err := fake.CreateCategory(ctx, "Bags")
	require.NoError(t, err)
	_, err = fake.CreateCategory(ctx, "Bags")
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, "23505", pgErr.Code)
}

func TestDeleteProductKeepsLineSnapshot(t *testing.T) {
	ctx := context.Background()
	fake := dbtest.New()
	c, err := fake.CreateCustomer(ctx, dbgen.CreateCustomerParams{FullName: "Ana"})
	require.NoError(t, err)
	p, err := fake.CreateProduct(ctx, dbgen.CreateProductParams{Name: "Watch", ForeignCost: money.MustParse("10"), Stock: 1})
	require.NoError(t, err)
	o, err := fake.CreateOrder(ctx, dbgen.CreateOrderParams{CustomerID: c.ID, PaymentMethod: "one_time", Installments: 1, PaymentStatus: "paid"})
	require.NoError(t, err)
	_, err = fake.CreateOrderLine(ctx, dbgen.CreateOrderLineParams{
		OrderID:     o.ID,
		ProductID:   pgtype.UUID{Bytes: p.ID, Valid: true},
		ProductName: p.Name,
		Quantity:    1,
		UnitCost:    money.MustParse("59.53"),
		UnitMargin:  money.MustParse("15"),
	})
	require.NoError(t, err)

	n, err := fake.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	lines, err := fake.ListOrderLines(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.False(t, lines[0].ProductID.Valid)
	require.Equal(t, "Watch", lines[0].ProductName)
}

func TestFailOnInjectsErrors(t *testing.T) {
	ctx := context.Background()
	fake := dbtest.New()
	boom := errors.New("boom")
	fake.FailOn("CreateCustomer", 2, boom)

	_, err := fake.CreateCustomer(ctx, dbgen.CreateCustomerParams{FullName: "A"})
	require.NoError(t, err)
	_, err = fake.CreateCustomer(ctx, dbgen.CreateCustomerParams{FullName: "B"})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, fake.Calls("CreateCustomer"))
}
