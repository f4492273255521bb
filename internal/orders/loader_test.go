package orders

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("nested container", func(t *testing.T) {
		input := `[
			{
				"id": 1,
				"name": "Alice",
				"registration_date": "2020-05-01",
				"orders": [
					{
						"order_id": 100,
						"order_date": "2023-01-15",
						"items": [
							{"item_id": 11, "product_name": "Widget", "category": 1, "price": "$10.00", "quantity": 3},
							{"item_id": 12, "product_name": "Gadget", "category": "2", "price": 5.5, "quantity": "1"}
						]
					}
				]
			}
		]`

		customers, err := Load(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(customers) != 1 {
			t.Fatalf("got %d customers, want 1", len(customers))
		}

		c := customers[0]
		if c.ID == nil || *c.ID != 1 || c.Name != "Alice" {
			t.Errorf("customer fields wrong: %+v", c)
		}
		if len(c.Orders) != 1 || len(c.Orders[0].Items) != 2 {
			t.Fatalf("nested structure wrong: %+v", c)
		}

		// Polymorphic fields keep raw JSON for the transform to parse.
		it := c.Orders[0].Items[0]
		if string(it.Price) != `"$10.00"` {
			t.Errorf("Price raw = %s, want %q", it.Price, `"$10.00"`)
		}
		if string(it.Category) != `1` {
			t.Errorf("Category raw = %s, want 1", it.Category)
		}
	})

	t.Run("missing fields decode as nil", func(t *testing.T) {
		customers, err := Load(strings.NewReader(`[{"name": "NoID"}]`))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if customers[0].ID != nil {
			t.Errorf("missing id should decode as nil, got %v", *customers[0].ID)
		}
	})

	t.Run("malformed container is fatal", func(t *testing.T) {
		if _, err := Load(strings.NewReader(`{"not": "an array"`)); err == nil {
			t.Fatal("expected error for malformed input")
		}
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		if _, err := Load(strings.NewReader(`[] []`)); err == nil {
			t.Fatal("expected error for trailing data")
		}
	})

	t.Run("empty array", func(t *testing.T) {
		customers, err := Load(strings.NewReader(`[]`))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(customers) != 0 {
			t.Errorf("got %d customers, want 0", len(customers))
		}
	})
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/orders.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
