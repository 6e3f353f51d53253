package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/minishop/internal/domain"
	"github.com/vladislavdragonenkov/minishop/internal/storage/memory"
)

// seedCustomer кладёт клиента в хранилище и возвращает сохранённую запись.
func seedCustomer(t *testing.T, store *memory.Store, id, email string) domain.Customer {
	t.Helper()
	customer, err := store.Customers().Create(context.Background(), domain.Customer{
		ID:      id,
		Name:    "Ann",
		Surname: "Lee",
		Email:   email,
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func seedShopItem(t *testing.T, store *memory.Store, id string, categoryIDs ...string) domain.ShopItem {
	t.Helper()
	item, err := store.ShopItems().Create(context.Background(), domain.ShopItem{
		ID:    id,
		Title: "Pen",
		Price: 1.5,
	}, categoryIDs)
	if err != nil {
		t.Fatalf("seed shop item: %v", err)
	}
	return item
}

func seedCategory(t *testing.T, store *memory.Store, id, title string) domain.Category {
	t.Helper()
	category, err := store.Categories().Create(context.Background(), domain.Category{
		ID:    id,
		Title: title,
	})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func TestCustomerRepository_DuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	seedCustomer(t, store, "c-1", "ann@example.com")

	_, err := store.Customers().Create(context.Background(), domain.Customer{
		ID:      "c-2",
		Name:    "Bob",
		Surname: "Roe",
		Email:   "ann@example.com",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	// Обновление на чужой email тоже конфликт.
	seedCustomer(t, store, "c-3", "bob@example.com")
	_, err = store.Customers().Update(context.Background(), domain.Customer{
		ID:      "c-3",
		Name:    "Bob",
		Surname: "Roe",
		Email:   "ann@example.com",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError on update, got %v", err)
	}

	// Обновление с сохранением собственного email конфликтом не считается.
	if _, err := store.Customers().Update(context.Background(), domain.Customer{
		ID:      "c-3",
		Name:    "Bob",
		Surname: "Roe",
		Email:   "bob@example.com",
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCustomerRepository_DeleteCascadesOrders(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "c-1", "ann@example.com")
	seedShopItem(t, store, "s-1")

	_, err := store.Orders().Create(ctx, domain.Order{
		ID:         "o-1",
		CustomerID: "c-1",
		Items:      []domain.OrderItem{{ID: "i-1", ShopItemID: "s-1", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := store.Customers().Delete(ctx, "c-1"); err != nil {
		t.Fatalf("delete customer: %v", err)
	}

	if _, err := store.Orders().GetView(ctx, "o-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected order to be cascaded, got %v", err)
	}
}

func TestShopItemRepository_MissingCategoryRejectsWhole(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCategory(t, store, "cat-1", "Office")

	_, err := store.ShopItems().Create(ctx, domain.ShopItem{ID: "s-1", Title: "Pen", Price: 1}, []string{"cat-1", "cat-missing"})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.ID != "cat-missing" {
		t.Fatalf("error must name the missing category, got %q", nf.ID)
	}

	// Товар не должен появиться частично.
	if _, err := store.ShopItems().Get(ctx, "s-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected no partial shop item, got %v", err)
	}
}

func TestShopItemRepository_ReplaceAllCategories(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCategory(t, store, "cat-1", "Office")
	seedCategory(t, store, "cat-2", "Sale")
	seedShopItem(t, store, "s-1", "cat-1")

	updated, err := store.ShopItems().Update(ctx, domain.ShopItem{ID: "s-1", Title: "Pen v2", Price: 2}, []string{"cat-2"})
	if err != nil {
		t.Fatalf("update shop item: %v", err)
	}
	if len(updated.Categories) != 1 || updated.Categories[0].ID != "cat-2" {
		t.Fatalf("expected categories replaced with cat-2, got %+v", updated.Categories)
	}

	// Пустой список — товар без категорий, не ошибка.
	updated, err = store.ShopItems().Update(ctx, domain.ShopItem{ID: "s-1", Title: "Pen v3", Price: 2}, nil)
	if err != nil {
		t.Fatalf("update shop item: %v", err)
	}
	if len(updated.Categories) != 0 {
		t.Fatalf("expected no categories, got %+v", updated.Categories)
	}
}

func TestCategoryRepository_DeleteDropsLinks(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCategory(t, store, "cat-1", "Office")
	seedShopItem(t, store, "s-1", "cat-1")

	if err := store.Categories().Delete(ctx, "cat-1"); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	item, err := store.ShopItems().Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("get shop item: %v", err)
	}
	if len(item.Categories) != 0 {
		t.Fatalf("expected link to deleted category to disappear, got %+v", item.Categories)
	}
}

func TestOrderRepository_CreateChecksReferences(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "c-1", "ann@example.com")
	seedShopItem(t, store, "s-1")

	// Неизвестный клиент.
	_, err := store.Orders().Create(ctx, domain.Order{
		ID:         "o-1",
		CustomerID: "c-missing",
		Items:      []domain.OrderItem{{ID: "i-1", ShopItemID: "s-1", Quantity: 1}},
	})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "c-missing" {
		t.Fatalf("expected NotFoundError naming customer, got %v", err)
	}

	// Неизвестный товар: заказ не появляется даже частично.
	_, err = store.Orders().Create(ctx, domain.Order{
		ID:         "o-1",
		CustomerID: "c-1",
		Items: []domain.OrderItem{
			{ID: "i-1", ShopItemID: "s-1", Quantity: 1},
			{ID: "i-2", ShopItemID: "s-missing", Quantity: 2},
		},
	})
	if !errors.As(err, &nf) || nf.ID != "s-missing" {
		t.Fatalf("expected NotFoundError naming shop item, got %v", err)
	}
	if _, err := store.Orders().GetView(ctx, "o-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected no partial order, got %v", err)
	}

	views, err := store.Orders().ListViews(ctx)
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty order list, got %d", len(views))
	}
}

func TestOrderRepository_ReplaceKeepsCreatedAt(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "c-1", "ann@example.com")
	seedShopItem(t, store, "s-1")

	created, err := store.Orders().Create(ctx, domain.Order{
		ID:         "o-1",
		CustomerID: "c-1",
		Items:      []domain.OrderItem{{ID: "i-1", ShopItemID: "s-1", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	replaced, err := store.Orders().Replace(ctx, domain.Order{
		ID:         "o-1",
		CustomerID: "c-1",
		Items:      []domain.OrderItem{{ID: "i-2", ShopItemID: "s-1", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("replace order: %v", err)
	}

	if !replaced.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("replace must keep the original creation time")
	}
	if len(replaced.Items) != 1 || replaced.Items[0].Quantity != 5 {
		t.Fatalf("expected single item with quantity 5, got %+v", replaced.Items)
	}
	// Позиции заменяются целиком, у новой позиции новый идентификатор.
	if replaced.Items[0].ID != "i-2" {
		t.Fatalf("expected replaced item id i-2, got %q", replaced.Items[0].ID)
	}

	// Replace несуществующего заказа — NotFound.
	_, err = store.Orders().Replace(ctx, domain.Order{
		ID:         "o-missing",
		CustomerID: "c-1",
		Items:      []domain.OrderItem{{ID: "i-3", ShopItemID: "s-1", Quantity: 1}},
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestOrderRepository_ViewSurvivesDanglingReferences(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "c-1", "ann@example.com")
	seedCategory(t, store, "cat-1", "Office")
	seedShopItem(t, store, "s-1", "cat-1")
	seedShopItem(t, store, "s-2")

	_, err := store.Orders().Create(ctx, domain.Order{
		ID:         "o-1",
		CustomerID: "c-1",
		Items: []domain.OrderItem{
			{ID: "i-1", ShopItemID: "s-1", Quantity: 1},
			{ID: "i-2", ShopItemID: "s-2", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	view, err := store.Orders().GetView(ctx, "o-1")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.Customer == nil || view.Customer.ID != "c-1" {
		t.Fatalf("expected embedded customer, got %+v", view.Customer)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 item views, got %d", len(view.Items))
	}
	if view.Items[0].ShopItem == nil || len(view.Items[0].ShopItem.Categories) != 1 {
		t.Fatalf("expected shop item with category, got %+v", view.Items[0].ShopItem)
	}

	// Удаляем товар второй позиции: позиция каскадно исчезает из заказа.
	if err := store.ShopItems().Delete(ctx, "s-2"); err != nil {
		t.Fatalf("delete shop item: %v", err)
	}
	view, err = store.Orders().GetView(ctx, "o-1")
	if err != nil {
		t.Fatalf("get view after item delete: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected cascade to drop the item, got %d items", len(view.Items))
	}
}

func TestOrderRepository_ListViewsOrderedByCreation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "c-1", "ann@example.com")
	seedShopItem(t, store, "s-1")

	for _, id := range []string{"o-b", "o-a", "o-c"} {
		if _, err := store.Orders().Create(ctx, domain.Order{
			ID:         id,
			CustomerID: "c-1",
			Items:      []domain.OrderItem{{ID: "i-" + id, ShopItemID: "s-1", Quantity: 1}},
		}); err != nil {
			t.Fatalf("create order %s: %v", id, err)
		}
	}

	views, err := store.Orders().ListViews(ctx)
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].CreatedAt.Before(views[i-1].CreatedAt) {
			t.Fatal("views must be ordered by creation time")
		}
	}
}
