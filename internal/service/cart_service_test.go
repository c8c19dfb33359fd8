package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/models"
)

// memCartRepo implements GuestCartRepo in memory with the same
// increment-or-insert semantics the SQL upsert provides.
type memCartRepo struct {
	lines    map[string]*models.GuestCartLine
	products map[int]*models.Product
	nextID   int
}

func newMemCartRepo(products map[int]*models.Product) *memCartRepo {
	return &memCartRepo{
		lines:    make(map[string]*models.GuestCartLine),
		products: products,
	}
}

func lineKey(session string, productID int) string {
	return fmt.Sprintf("%s/%d", session, productID)
}

func (m *memCartRepo) UpsertLine(ctx context.Context, session string, productID, quantity int, unitPrice decimal.Decimal, expiresAt *time.Time) (*models.GuestCartLine, error) {
	key := lineKey(session, productID)
	if line, ok := m.lines[key]; ok {
		line.Quantity += quantity
		line.Selected = true
		line.ExpiresAt = expiresAt
		copied := *line
		return &copied, nil
	}
	m.nextID++
	line := &models.GuestCartLine{
		ID:           m.nextID,
		SessionToken: session,
		ProductID:    productID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Selected:     true,
		ExpiresAt:    expiresAt,
	}
	m.lines[key] = line
	copied := *line
	return &copied, nil
}

func (m *memCartRepo) UpdateQuantity(ctx context.Context, session string, productID, quantity int) (bool, error) {
	line, ok := m.lines[lineKey(session, productID)]
	if !ok {
		return false, nil
	}
	line.Quantity = quantity
	return true, nil
}

func (m *memCartRepo) SetSelected(ctx context.Context, session string, productID int, selected bool) (bool, error) {
	line, ok := m.lines[lineKey(session, productID)]
	if !ok {
		return false, nil
	}
	line.Selected = selected
	return true, nil
}

func (m *memCartRepo) DeleteLine(ctx context.Context, session string, productID int) (int64, error) {
	key := lineKey(session, productID)
	if _, ok := m.lines[key]; !ok {
		return 0, nil
	}
	delete(m.lines, key)
	return 1, nil
}

func (m *memCartRepo) ClearSession(ctx context.Context, session string) (int64, error) {
	var n int64
	for key, line := range m.lines {
		if line.SessionToken == session {
			delete(m.lines, key)
			n++
		}
	}
	return n, nil
}

func (m *memCartRepo) DeleteSelected(ctx context.Context, session string) (int64, error) {
	var n int64
	for key, line := range m.lines {
		if line.SessionToken == session && line.Selected {
			delete(m.lines, key)
			n++
		}
	}
	return n, nil
}

func (m *memCartRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for key, line := range m.lines {
		if line.ExpiresAt != nil && line.ExpiresAt.Before(now) {
			delete(m.lines, key)
			n++
		}
	}
	return n, nil
}

func (m *memCartRepo) ListSession(ctx context.Context, session string, selectedOnly bool) ([]models.CartLineView, error) {
	var views []models.CartLineView
	for _, line := range m.lines {
		if line.SessionToken != session {
			continue
		}
		if selectedOnly && !line.Selected {
			continue
		}
		product, ok := m.products[line.ProductID]
		if !ok || !product.Sellable {
			continue
		}
		views = append(views, models.CartLineView{
			GuestCartLine: *line,
			ProductName:   product.Name,
			CurrentPrice:  product.Price,
		})
	}
	return views, nil
}

func (m *memCartRepo) SessionTotal(ctx context.Context, session string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range m.lines {
		if line.SessionToken == session {
			total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return total, nil
}

type stubProductRepo struct {
	products map[int]*models.Product
}

func (s *stubProductRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return s.products[id], nil
}

func testProducts() map[int]*models.Product {
	return map[int]*models.Product{
		1: {ID: 1, Name: "wooden train", Price: dec(150000), Sellable: true},
		2: {ID: 2, Name: "plush bear", Price: dec(90000), Sellable: true},
		3: {ID: 3, Name: "retired robot", Price: dec(250000), Sellable: false},
	}
}

func newCartService(t *testing.T) (*CartService, *memCartRepo) {
	t.Helper()
	products := testProducts()
	repo := newMemCartRepo(products)
	svc := NewCartService(repo, &stubProductRepo{products: products}, 0, zap.NewNop())
	return svc, repo
}

func TestAddLineValidation(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "", 1, 1)
	assert.ErrorIs(t, err, ErrEmptySessionToken)

	_, err = svc.AddLine(ctx, strings.Repeat("x", 256), 1, 1)
	assert.ErrorIs(t, err, ErrSessionTokenTooLong)

	_, err = svc.AddLine(ctx, "sess", 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddLine(ctx, "sess", 999, 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	// unsellable products are rejected the same way
	_, err = svc.AddLine(ctx, "sess", 3, 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestAddLineMergesQuantities(t *testing.T) {
	svc, repo := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "sess", 1, 2)
	require.NoError(t, err)
	line, err := svc.AddLine(ctx, "sess", 1, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, line.Quantity, "re-add must merge, not duplicate")
	assert.Len(t, repo.lines, 1)
}

func TestAddLineSnapshotsPrice(t *testing.T) {
	svc, _ := newCartService(t)

	line, err := svc.AddLine(context.Background(), "sess", 2, 1)
	require.NoError(t, err)
	assert.True(t, line.UnitPrice.Equal(dec(90000)))
	assert.True(t, line.Selected)
}

func TestUpdateQuantityNotFound(t *testing.T) {
	svc, _ := newCartService(t)

	updated, err := svc.UpdateQuantity(context.Background(), "sess", 1, 4)
	require.NoError(t, err)
	assert.False(t, updated, "missing line reports false, not an error")
}

func TestTotalIgnoresSelection(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "sess", 1, 2) // 2 * 150000
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "sess", 2, 1) // 1 * 90000
	require.NoError(t, err)

	_, err = svc.SelectLine(ctx, "sess", 2, false)
	require.NoError(t, err)

	total, err := svc.Total(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, total.Equal(dec(390000)), "got %s", total)
}

func TestFetchHidesUnsellableProducts(t *testing.T) {
	products := testProducts()
	repo := newMemCartRepo(products)
	svc := NewCartService(repo, &stubProductRepo{products: products}, 0, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "sess", 1, 1)
	require.NoError(t, err)

	// the product goes off sale after the line was created
	products[1].Sellable = false

	views, err := svc.Fetch(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, views, "lines for unsellable products are hidden")
	assert.Len(t, repo.lines, 1, "but not deleted")
}

func TestSweepDeletesExpiredLines(t *testing.T) {
	products := testProducts()
	repo := newMemCartRepo(products)
	svc := NewCartService(repo, &stubProductRepo{products: products}, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "sess", 1, 1)
	require.NoError(t, err)

	// force the line into the past
	past := time.Now().Add(-time.Minute)
	for _, line := range repo.lines {
		line.ExpiresAt = &past
	}

	deleted, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, repo.lines)
}

func TestClearSession(t *testing.T) {
	svc, repo := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "a", 1, 1)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "a", 2, 1)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "b", 1, 1)
	require.NoError(t, err)

	deleted, err := svc.Clear(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Len(t, repo.lines, 1, "other sessions are untouched")
}
