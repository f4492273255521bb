package flatten

// flatten.go is the transform core: a single synchronous pass over the
// nested input that emits one FlatRow per surviving line item.
//
// Error taxonomy:
//   - Structural (missing customer_id/order_id/item_id, empty required name):
//     the record's subtree is dropped and reported as a RecordFailure.
//   - Row-local (unparseable or negative price/quantity): the single line
//     item is excluded and counted; siblings are unaffected.
//   - Optional fields (dates): null substitution, never an error.

import "strings"

// Flattener applies the cleaning and derivation rules against a fixed
// category table. The zero value is not usable; construct with New.
type Flattener struct {
	categories *CategoryTable
}

// New creates a Flattener. A nil table selects the built-in categories.
func New(categories *CategoryTable) *Flattener {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Flattener{categories: categories}
}

// Flatten converts the nested customer records into flat rows, preserving
// input ordering: customer order, then order order, then line-item order.
// It is a pure function of its inputs; calling it twice on the same input
// yields identical output.
func (f *Flattener) Flatten(customers []CustomerInput, vips VIPSet) ([]FlatRow, Report) {
	var rows []FlatRow
	var report Report

	for ci, customer := range customers {
		if customer.ID == nil {
			report.Failures = append(report.Failures, RecordFailure{
				Scope: "customer", Index: ci, Reason: "missing customer id",
			})
			continue
		}
		customerID := *customer.ID

		name := strings.TrimSpace(customer.Name)
		if name == "" {
			report.Failures = append(report.Failures, RecordFailure{
				Scope: "customer", CustomerID: customerID, Index: ci,
				Reason: "missing customer name",
			})
			continue
		}

		regDate := ParseDate(customer.RegistrationDate)
		isVIP := vips.Contains(customerID)

		for oi, order := range customer.Orders {
			if order.ID == nil {
				report.Failures = append(report.Failures, RecordFailure{
					Scope: "order", CustomerID: customerID, Index: oi,
					Reason: "missing order id",
				})
				continue
			}
			orderID := *order.ID
			orderDate := ParseDate(order.Date)

			// First pass: parse and validate items, accumulating the
			// order total over survivors only.
			start := len(rows)
			orderTotal := 0.0

			for ii, item := range order.Items {
				if item.ProductID == nil {
					report.Failures = append(report.Failures, RecordFailure{
						Scope: "item", CustomerID: customerID, OrderID: orderID,
						Index: ii, Reason: "missing product id",
					})
					continue
				}

				productName := strings.TrimSpace(item.Name)
				if productName == "" {
					report.Failures = append(report.Failures, RecordFailure{
						Scope: "item", CustomerID: customerID, OrderID: orderID,
						Index: ii, Reason: "missing product name",
					})
					continue
				}

				price, ok := ParsePrice(item.Price)
				if !ok || price < 0 {
					report.Skipped++
					continue
				}

				qty, ok := ParseQuantity(item.Quantity)
				if !ok || qty < 0 {
					report.Skipped++
					continue
				}

				total := price * float64(qty)
				orderTotal += total

				rows = append(rows, FlatRow{
					CustomerID:       customerID,
					CustomerName:     name,
					RegistrationDate: regDate,
					IsVIP:            isVIP,
					OrderID:          orderID,
					OrderDate:        orderDate,
					ProductID:        *item.ProductID,
					ProductName:      productName,
					Category:         f.categories.Label(item.Category),
					UnitPrice:        price,
					ItemQuantity:     qty,
					TotalItemPrice:   total,
				})
			}

			// Second pass: derive each survivor's share of the order total.
			// A zero total yields 0.0 for every row, not a division error.
			if orderTotal > 0 {
				for i := start; i < len(rows); i++ {
					rows[i].TotalOrderValuePercentage = rows[i].TotalItemPrice / orderTotal * 100
				}
			}
		}
	}

	report.Rows = len(rows)
	return rows, report
}
