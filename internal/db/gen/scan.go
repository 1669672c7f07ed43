package dbgen

import "github.com/jackc/pgx/v5"

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var items []Order
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.CustomerID,
			&i.CreatedAt,
			&i.PaymentMethod,
			&i.Installments,
			&i.DueDay,
			&i.PaymentStatus,
			&i.DeliveryStatus,
			&i.ServiceFee,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanOrderLines(rows pgx.Rows) ([]OrderLine, error) {
	var items []OrderLine
	for rows.Next() {
		var i OrderLine
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.ProductName,
			&i.ProductBrand,
			&i.ForeignUnitCost,
			&i.ExchangeRate,
			&i.Quantity,
			&i.UnitCost,
			&i.UnitMargin,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
