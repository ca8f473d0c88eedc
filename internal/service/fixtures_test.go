package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedEvent struct {
	Type    string
	Payload map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// memoryCache is a ReportCache kept in a map, JSON encoded like the redis one
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	hits        int
	invalidated int
	generation  uint64
	// onGeneration runs once, right after the next generation read
	onGeneration func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.invalidated++
	c.generation++
	return nil
}

func (c *memoryCache) Generation(context.Context) (uint64, error) {
	c.mu.Lock()
	gen := c.generation
	hook := c.onGeneration
	c.onGeneration = nil
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return gen, nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// fixedNumbers hands out sale numbers from a list, repeating the last one when exhausted
type fixedNumbers struct {
	mu      sync.Mutex
	numbers []string
	calls   int
}

func (f *fixedNumbers) Next() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.numbers) {
		i = len(f.numbers) - 1
	}
	f.calls++
	return f.numbers[i]
}

type env struct {
	db        *gorm.DB
	products  repository.ProductRepository
	txs       repository.TransactionRepository
	sales     repository.SaleRepository
	ledger    LedgerService
	inventory InventoryService
	checkout  CheckoutService
	reports   ReportService
	events    *recordingPublisher
	cache     *memoryCache
	numbers   *fixedNumbers
	cashier   Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	e := &env{
		db:       db,
		products: repository.NewProductRepo(db),
		txs:      repository.NewTransactionRepo(db),
		sales:    repository.NewSaleRepo(db),
		events:   &recordingPublisher{},
		cache:    newMemoryCache(),
		numbers:  &fixedNumbers{},
	}

	user := testutil.CreateUser(t, db, "cashier@example.com")
	e.cashier = Actor{ID: user.ID, Name: user.FullName, Email: user.Email}

	e.ledger = NewLedgerService(db, e.products, e.txs, e.events, e.cache)
	e.inventory = NewInventoryService(db, e.products, repository.NewCategoryRepo(db), e.ledger, e.events, e.cache)
	e.checkout = e.newCheckout(e.ledger, 5)
	e.reports = NewReportService(e.products, e.txs, e.sales, e.cache, SystemClock)
	return e
}

// newCheckout builds a checkout service over the env, numbering sales SALE-20261016-000001, -000002, ...
func (e *env) newCheckout(ledger LedgerService, attempts int) CheckoutService {
	if len(e.numbers.numbers) == 0 {
		for i := 1; i <= 50; i++ {
			e.numbers.numbers = append(e.numbers.numbers, fmt.Sprintf("SALE-20261016-%06d", i))
		}
	}
	return NewCheckoutService(e.db, e.products, e.sales, ledger, e.numbers, attempts, e.events, e.cache)
}

func (e *env) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.CurrentStock
}

func (e *env) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

// ledgerOf returns the product's ledger oldest first
func (e *env) ledgerOf(t *testing.T, id uuid.UUID) []model.StockTransaction {
	t.Helper()
	var rows []model.StockTransaction
	require.NoError(t, e.db.Where("product_id = ?", id).Order("sequence ASC").Find(&rows).Error)
	return rows
}
