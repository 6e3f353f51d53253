package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

// Сборка представления заказа: один запрос orders+customers, затем по
// одному запросу позиций на заказ (N+1 — осознанное ограничение на
// целевом масштабе, скрытое за интерфейсом OrderRepository). Все join'ы
// внешние: заказ с удалённым клиентом и позиция с удалённым товаром
// остаются в выдаче с пустым вложенным полем.

const orderViewSelect = `
	SELECT o.id, o.customer_id, o.created_at, o.updated_at,
	       c.id, c.name, c.surname, c.email, c.created_at, c.updated_at
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id
`

func fetchOrderView(ctx context.Context, q queryer, orderID string) (domain.OrderView, error) {
	row := q.QueryRowContext(ctx, orderViewSelect+` WHERE o.id = $1`, orderID)

	view, err := scanOrderView(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderView{}, &domain.NotFoundError{Entity: "order", ID: orderID}
		}
		return domain.OrderView{}, fmt.Errorf("select order view: %w", err)
	}

	view.Items, err = loadOrderItemViews(ctx, q, view.ID)
	if err != nil {
		return domain.OrderView{}, err
	}

	return view, nil
}

func fetchOrderViews(ctx context.Context, q queryer) ([]domain.OrderView, error) {
	rows, err := q.QueryContext(ctx, orderViewSelect+` ORDER BY o.created_at ASC, o.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list order views: %w", err)
	}
	defer rows.Close()

	views := make([]domain.OrderView, 0)
	for rows.Next() {
		view, err := scanOrderView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order view: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order views: %w", err)
	}

	for i := range views {
		items, err := loadOrderItemViews(ctx, q, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Items = items
	}

	return views, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderView(row rowScanner) (domain.OrderView, error) {
	var (
		view        domain.OrderView
		custID      sql.NullString
		custName    sql.NullString
		custSurname sql.NullString
		custEmail   sql.NullString
		custCreated sql.NullTime
		custUpdated sql.NullTime
	)

	if err := row.Scan(
		&view.ID, &view.CustomerID, &view.CreatedAt, &view.UpdatedAt,
		&custID, &custName, &custSurname, &custEmail, &custCreated, &custUpdated,
	); err != nil {
		return domain.OrderView{}, err
	}

	if custID.Valid {
		view.Customer = &domain.Customer{
			ID:        custID.String,
			Name:      custName.String,
			Surname:   custSurname.String,
			Email:     custEmail.String,
			CreatedAt: custCreated.Time,
			UpdatedAt: custUpdated.Time,
		}
	}

	return view, nil
}

func loadOrderItemViews(ctx context.Context, q queryer, orderID string) ([]domain.OrderItemView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT oi.id, oi.quantity,
		       si.id, si.title, si.description, si.price, si.created_at, si.updated_at,
		       cat.id, cat.title, cat.description, cat.created_at, cat.updated_at
		FROM order_items oi
		LEFT JOIN shop_items si ON si.id = oi.shop_item_id
		LEFT JOIN shop_items_to_categories link ON link.shop_item_id = si.id
		LEFT JOIN shop_item_categories cat ON cat.id = link.category_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at ASC, oi.id ASC, cat.created_at ASC, cat.id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order item views: %w", err)
	}
	defer rows.Close()

	// Из-за join'а по категориям позиция может прийти несколькими
	// строками; сворачиваем их, сохраняя порядок позиций.
	items := make([]domain.OrderItemView, 0)
	index := make(map[string]int)

	for rows.Next() {
		var (
			itemID   string
			quantity int32

			siID, siTitle, siDescription    sql.NullString
			siPrice                         sql.NullFloat64
			siCreated, siUpdated            sql.NullTime
			catID, catTitle, catDescription sql.NullString
			catCreated, catUpdated          sql.NullTime
		)

		if err := rows.Scan(
			&itemID, &quantity,
			&siID, &siTitle, &siDescription, &siPrice, &siCreated, &siUpdated,
			&catID, &catTitle, &catDescription, &catCreated, &catUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan order item view: %w", err)
		}

		pos, seen := index[itemID]
		if !seen {
			item := domain.OrderItemView{ID: itemID, Quantity: quantity}
			if siID.Valid {
				item.ShopItem = &domain.ShopItem{
					ID:          siID.String,
					Title:       siTitle.String,
					Description: siDescription.String,
					Price:       siPrice.Float64,
					Categories:  make([]domain.Category, 0),
					CreatedAt:   siCreated.Time,
					UpdatedAt:   siUpdated.Time,
				}
			}
			items = append(items, item)
			pos = len(items) - 1
			index[itemID] = pos
		}

		if catID.Valid && items[pos].ShopItem != nil {
			items[pos].ShopItem.Categories = append(items[pos].ShopItem.Categories, domain.Category{
				ID:          catID.String,
				Title:       catTitle.String,
				Description: catDescription.String,
				CreatedAt:   catCreated.Time,
				UpdatedAt:   catUpdated.Time,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item views: %w", err)
	}

	return items, nil
}
