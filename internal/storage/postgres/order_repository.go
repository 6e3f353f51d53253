package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
// Агрегат заказа пишется в одной транзакции: проверки ссылок, строка
// заказа, позиции и итоговое чтение представления либо фиксируются все
// вместе, либо не фиксируются вовсе.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.OrderView, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Ссылки проверяются до записи строки заказа, в той же транзакции:
	// ошибка должна назвать конкретный отсутствующий id, а частичный
	// агрегат — никогда не зафиксироваться.
	if err = checkOrderReferences(ctx, tx, order); err != nil {
		return domain.OrderView{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id)
		VALUES ($1, $2)
	`, order.ID, order.CustomerID); err != nil {
		return domain.OrderView{}, fmt.Errorf("insert order: %w", err)
	}

	if err = insertOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		return domain.OrderView{}, err
	}

	// Ответ — повторное чтение через сборщик представления, чтобы
	// проставленные базой значения были авторитетны.
	view, err := fetchOrderView(ctx, tx, order.ID)
	if err != nil {
		return domain.OrderView{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.OrderView{}, fmt.Errorf("commit create order: %w", err)
	}

	return view, nil
}

func (r *orderRepository) Replace(ctx context.Context, order domain.Order) (domain.OrderView, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Блокировка строки заказа сериализует конкурирующие replace-all:
	// пара delete+insert не перемешается с чужой парой на том же заказе.
	if err = lockOrderRow(ctx, tx, order.ID); err != nil {
		return domain.OrderView{}, err
	}

	if err = checkOrderReferences(ctx, tx, order); err != nil {
		return domain.OrderView{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET customer_id = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, order.CustomerID, order.ID); err != nil {
		return domain.OrderView{}, fmt.Errorf("update order: %w", err)
	}

	// Replace-all: старые позиции удаляются целиком, новый набор
	// вставляется с новыми идентификаторами.
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM order_items WHERE order_id = $1
	`, order.ID); err != nil {
		return domain.OrderView{}, fmt.Errorf("delete order items: %w", err)
	}

	if err = insertOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		return domain.OrderView{}, err
	}

	view, err := fetchOrderView(ctx, tx, order.ID)
	if err != nil {
		return domain.OrderView{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.OrderView{}, fmt.Errorf("commit replace order: %w", err)
	}

	return view, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockOrderRow(ctx, tx, id); err != nil {
		return err
	}

	// Дочерние строки удаляются раньше родительской.
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetView(ctx context.Context, id string) (domain.OrderView, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return fetchOrderView(ctx, r.db, id)
}

func (r *orderRepository) ListViews(ctx context.Context) ([]domain.OrderView, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return fetchOrderViews(ctx, r.db)
}

func lockOrderRow(ctx context.Context, tx *sql.Tx, orderID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "order", ID: orderID}
		}
		return fmt.Errorf("lock order row: %w", err)
	}
	return nil
}

func checkOrderReferences(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	exists, err := rowExists(ctx, tx, `SELECT id FROM customers WHERE id = $1`, order.CustomerID)
	if err != nil {
		return err
	}
	if !exists {
		return &domain.NotFoundError{Entity: "customer", ID: order.CustomerID}
	}

	// Каждый товар проверяется отдельно, чтобы ошибка назвала виновника.
	for _, item := range order.Items {
		exists, err := rowExists(ctx, tx, `SELECT id FROM shop_items WHERE id = $1`, item.ShopItemID)
		if err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Entity: "shop item", ID: item.ShopItemID}
		}
	}

	return nil
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, orderID string, items []domain.OrderItem) error {
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, shop_item_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, item.ID, orderID, item.ShopItemID, item.Quantity); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
