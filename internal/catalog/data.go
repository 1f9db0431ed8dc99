package catalog

import (
	"bridge-be/internal/order"

	"github.com/shopspring/decimal"
)

// Stores are the merchant locations the dashboard ships with.
func Stores() []order.Store {
	return []order.Store{
		{ID: "s1", Name: "Grocery Store A", Address: "123 Main St, City", Phone: "+1234567890"},
		{ID: "s2", Name: "Supermarket B", Address: "456 Oak Ave, Town", Phone: "+1987654321"},
		{ID: "s3", Name: "Mini Mart C", Address: "789 Pine Rd, Village", Phone: "+1122334455"},
	}
}

// Products lists the catalogue with a line quantity of one. The first four
// are the staples agents order most.
func Products() []order.Product {
	return []order.Product{
		product("p1", "Milk", "2.99", "MLK001", "Dairy"),
		product("p2", "Bread", "1.99", "BRD001", "Bakery"),
		product("p3", "Eggs", "3.49", "EGG001", "Dairy"),
		product("p4", "Cheese", "4.99", "CHS001", "Dairy"),
		product("p5", "Rice", "5.99", "RCE001", "Pantry"),
		product("p6", "Pasta", "2.49", "PST001", "Pantry"),
		product("p7", "Chicken", "7.99", "CHK001", "Meat"),
		product("p8", "Beef", "9.99", "BEF001", "Meat"),
		product("p9", "Fish", "8.99", "FSH001", "Seafood"),
		product("p10", "Vegetables", "4.99", "VEG001", "Produce"),
		product("p11", "Fruits", "6.99", "FRT001", "Produce"),
		product("p12", "Juice", "3.99", "JCE001", "Beverages"),
		product("p13", "Water", "1.99", "WTR001", "Beverages"),
		product("p14", "Soda", "2.99", "SDA001", "Beverages"),
	}
}

// StapleCount is how many leading entries of Products are staples.
const StapleCount = 4

func product(id, name, price, sku, category string) order.Product {
	return order.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: 1,
		SKU:      sku,
		Category: category,
	}
}
