// Package dbtest opens isolated in-memory sqlite databases carrying the full model schema.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// Open returns a client over a fresh in-memory database. Each call gets its own database.
func Open(t testing.TB) *db.Client {
	t.Helper()
	dsn := "file:js_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.NewFromGorm(conn)
}

// Store inserts a store with sensible defaults.
func Store(t testing.TB, conn *gorm.DB, mutate ...func(*models.Store)) *models.Store {
	t.Helper()
	store := &models.Store{
		Name:            "Main Street Vapes",
		AddressLine1:    "100 Congress Ave",
		City:            "Austin",
		State:           "TX",
		PostalCode:      "78701",
		TaxJurisdiction: "",
	}
	for _, fn := range mutate {
		fn(store)
	}
	if err := conn.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

// Product inserts an active product in the store.
func Product(t testing.TB, conn *gorm.DB, storeID uuid.UUID, mutate ...func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		StoreID:    storeID,
		SKU:        "SKU-" + uuid.NewString()[:8],
		Name:       "Test Product",
		Category:   "accessories",
		PriceCents: 1000,
		OnHandQty:  10,
		IsActive:   true,
	}
	for _, fn := range mutate {
		fn(product)
	}
	active := product.IsActive
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	if !active {
		// is_active defaults to true, so a false value has to be written explicitly
		if err := conn.Model(product).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate product: %v", err)
		}
		product.IsActive = false
	}
	return product
}

// Employee inserts an active employee in the store.
func Employee(t testing.TB, conn *gorm.DB, storeID uuid.UUID, mutate ...func(*models.Employee)) *models.Employee {
	t.Helper()
	employee := &models.Employee{
		StoreID:      storeID,
		Email:        "emp_" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Cashier",
		Role:         enums.EmployeeRoleCashier,
		IsActive:     true,
	}
	for _, fn := range mutate {
		fn(employee)
	}
	active := employee.IsActive
	if err := conn.Create(employee).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if !active {
		if err := conn.Model(employee).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate employee: %v", err)
		}
		employee.IsActive = false
	}
	return employee
}
