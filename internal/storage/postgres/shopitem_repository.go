package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
)

type shopItemRepository struct {
	db *sql.DB
}

// NewShopItemRepository создаёт PostgreSQL-реализацию ShopItemRepository.
func NewShopItemRepository(store *Store) domain.ShopItemRepository {
	return &shopItemRepository{db: store.DB()}
}

func (r *shopItemRepository) Create(ctx context.Context, item domain.ShopItem, categoryIDs []string) (domain.ShopItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ShopItem{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO shop_items (id, title, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, item.ID, item.Title, item.Description, item.Price).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.ShopItem{}, fmt.Errorf("insert shop item: %w", err)
	}

	if err = replaceCategoryLinks(ctx, tx, item.ID, categoryIDs); err != nil {
		return domain.ShopItem{}, err
	}

	item.Categories, err = loadItemCategories(ctx, tx, item.ID)
	if err != nil {
		return domain.ShopItem{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.ShopItem{}, fmt.Errorf("commit create shop item: %w", err)
	}

	return item, nil
}

func (r *shopItemRepository) Get(ctx context.Context, id string) (domain.ShopItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	item, err := selectShopItem(ctx, r.db, id)
	if err != nil {
		return domain.ShopItem{}, err
	}

	item.Categories, err = loadItemCategories(ctx, r.db, id)
	if err != nil {
		return domain.ShopItem{}, err
	}

	return item, nil
}

func (r *shopItemRepository) List(ctx context.Context) ([]domain.ShopItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(description, ''), price, created_at, updated_at
		FROM shop_items
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ShopItem, 0)
	for rows.Next() {
		var item domain.ShopItem
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.Price,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan shop item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shop item rows: %w", err)
	}

	// Категории каждого товара подтягиваются отдельным запросом (N+1).
	for i := range items {
		categories, err := loadItemCategories(ctx, r.db, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Categories = categories
	}

	return items, nil
}

func (r *shopItemRepository) Update(ctx context.Context, item domain.ShopItem, categoryIDs []string) (domain.ShopItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ShopItem{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE shop_items
		SET title = $1,
		    description = $2,
		    price = $3,
		    updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at
	`, item.Title, item.Description, item.Price, item.ID).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = &domain.NotFoundError{Entity: "shop item", ID: item.ID}
			return domain.ShopItem{}, err
		}
		return domain.ShopItem{}, fmt.Errorf("update shop item: %w", err)
	}

	if err = replaceCategoryLinks(ctx, tx, item.ID, categoryIDs); err != nil {
		return domain.ShopItem{}, err
	}

	item.Categories, err = loadItemCategories(ctx, tx, item.ID)
	if err != nil {
		return domain.ShopItem{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.ShopItem{}, fmt.Errorf("commit update shop item: %w", err)
	}

	return item, nil
}

func (r *shopItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Связи с категориями и позиции заказов снимаются каскадом.
	res, err := r.db.ExecContext(ctx, `DELETE FROM shop_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shop item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "shop item", ID: id}
	}

	return nil
}

// replaceCategoryLinks пересобирает связи товара с категориями целиком:
// старые строки удаляются, новый список вставляется. Каждая категория
// проверяется до вставки, чтобы ошибка называла конкретный id.
func replaceCategoryLinks(ctx context.Context, tx *sql.Tx, itemID string, categoryIDs []string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM shop_items_to_categories WHERE shop_item_id = $1
	`, itemID); err != nil {
		return fmt.Errorf("delete category links: %w", err)
	}

	for _, categoryID := range categoryIDs {
		exists, err := rowExists(ctx, tx, `SELECT id FROM shop_item_categories WHERE id = $1`, categoryID)
		if err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Entity: "category", ID: categoryID}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shop_items_to_categories (id, shop_item_id, category_id)
			VALUES ($1, $2, $3)
		`, uuid.NewString(), itemID, categoryID); err != nil {
			return fmt.Errorf("insert category link: %w", err)
		}
	}

	return nil
}

func selectShopItem(ctx context.Context, q queryer, id string) (domain.ShopItem, error) {
	var item domain.ShopItem
	err := q.QueryRowContext(ctx, `
		SELECT id, title, COALESCE(description, ''), price, created_at, updated_at
		FROM shop_items
		WHERE id = $1
	`, id).Scan(
		&item.ID, &item.Title, &item.Description, &item.Price,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ShopItem{}, &domain.NotFoundError{Entity: "shop item", ID: id}
		}
		return domain.ShopItem{}, fmt.Errorf("select shop item: %w", err)
	}

	return item, nil
}

func loadItemCategories(ctx context.Context, q queryer, itemID string) ([]domain.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.title, COALESCE(c.description, ''), c.created_at, c.updated_at
		FROM shop_item_categories c
		INNER JOIN shop_items_to_categories link ON link.category_id = c.id
		WHERE link.shop_item_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID, &category.Title, &category.Description,
			&category.CreatedAt, &category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item categories: %w", err)
	}

	return categories, nil
}

var _ domain.ShopItemRepository = (*shopItemRepository)(nil)
