package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/notification"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/product"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
)

func TestCreateRequiresTitleSkuImages(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	in := validInput("SNK 100", 10)
	in.Images = nil
	_, err := productSvc.Create(context.Background(), owner.ID, in)
	status, msg := HTTPStatus(err)
	if status != 400 || msg != "Missing required fields: title, sku, images." {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}

func TestCreateRejectsTooManyImages(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	in := validInput("SNK 101", 10)
	in.Images = []string{"a", "b", "c", "d", "e", "f"}
	_, err := productSvc.Create(context.Background(), owner.ID, in)
	status, msg := HTTPStatus(err)
	if status != 400 || msg != "Maximum 5 images allowed." {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}

func TestCreateDerivesSlugAndMeta(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	in := validInput("SNK  200 B", 10)
	in.Description = strings.Repeat("x", 200)
	p, err := productSvc.Create(context.Background(), owner.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Slug != "snk-200-b" {
		t.Fatalf("slug = %q, want %q", p.Slug, "snk-200-b")
	}
	if p.MetaTitle != "Classic White Sneakers | Stride" {
		t.Fatalf("metaTitle = %q", p.MetaTitle)
	}
	if len(p.MetaDescription) != 153 || !strings.HasSuffix(p.MetaDescription, "...") {
		t.Fatalf("metaDescription should be truncated to 150 chars plus ellipsis, got len %d", len(p.MetaDescription))
	}
	if p.MetaKeywords != "Classic White Sneakers, Stride, buy online, best price" {
		t.Fatalf("metaKeywords = %q", p.MetaKeywords)
	}
}

func TestCreateTruncatesMultibyteDescriptionOnRunes(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	in := validInput("SNK 201", 10)
	in.Description = strings.Repeat("é", 200)
	p, err := productSvc.Create(context.Background(), owner.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !utf8.ValidString(p.MetaDescription) {
		t.Fatalf("metaDescription is not valid UTF-8: %q", p.MetaDescription)
	}
	if got := utf8.RuneCountInString(p.MetaDescription); got != 153 {
		t.Fatalf("metaDescription rune count = %d, want 153", got)
	}
	if !strings.HasSuffix(p.MetaDescription, "...") {
		t.Fatalf("metaDescription missing ellipsis: %q", p.MetaDescription)
	}
}

func TestCreateMetaTitleFallsBackToShop(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	in := validInput("SNK 102", 10)
	in.Brand = ""
	p, err := productSvc.Create(context.Background(), owner.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.MetaTitle != "Classic White Sneakers | Shop" {
		t.Fatalf("metaTitle = %q", p.MetaTitle)
	}
	if p.MetaKeywords != "Classic White Sneakers, buy online, best price" {
		t.Fatalf("metaKeywords = %q", p.MetaKeywords)
	}
}

func TestCreateDuplicateSKUConflicts(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 103", 10))
	_, err := productSvc.Create(context.Background(), owner.ID, validInput("SNK 103", 10))
	status, _ := HTTPStatus(err)
	if status != 409 {
		t.Fatalf("duplicate sku should conflict, got status %d", status)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)

	in := validInput("SNK 104", 10)
	in.CategoryIDs = []string{"no-such-category"}
	_, err := productSvc.Create(context.Background(), owner.ID, in)
	status, msg := HTTPStatus(err)
	if status != 400 || msg != "One or more categories do not exist." {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}

	// 校验失败时什么都不该写入
	var count int64
	db.Model(&product.Product{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no products persisted, got %d", count)
	}
}

func TestUpdateReplacesChildrenAtomically(t *testing.T) {
	db, productSvc, categorySvc, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	shoes, err := categorySvc.Create(context.Background(), "Shoes")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	in := validInput("SNK 105", 10)
	in.CategoryIDs = []string{shoes.ID}
	id := mustCreateProduct(t, productSvc, owner.ID, in)

	upd := validInput("SNK 105", 8)
	upd.Title = "Updated Sneakers"
	upd.Images = []string{"https://cdn.example.com/uploads/new1.jpg", "https://cdn.example.com/uploads/new2.jpg"}
	upd.Sizes = []string{"44"}
	upd.CategoryIDs = []string{shoes.ID}
	p, err := productSvc.Update(context.Background(), owner.ID, id, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Title != "Updated Sneakers" {
		t.Fatalf("title = %q", p.Title)
	}
	if len(p.Images) != 2 {
		t.Fatalf("expected images fully replaced, got %d", len(p.Images))
	}
	if len(p.Sizes) != 1 || p.Sizes[0].Size != "44" {
		t.Fatalf("expected sizes fully replaced, got %+v", p.Sizes)
	}
}

func TestUpdateKeepsSkuSlugAndMeta(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 202", 10))

	created, err := productSvc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// 更新请求不带 sku，品牌和标题都改了
	upd := validInput("", 10)
	upd.Title = "Retro Runner"
	upd.Brand = "Nova"
	p, err := productSvc.Update(context.Background(), owner.ID, id, upd)
	if err != nil {
		t.Fatalf("update without sku: %v", err)
	}
	if p.Title != "Retro Runner" || p.Brand != "Nova" {
		t.Fatalf("editable fields not applied: title=%q brand=%q", p.Title, p.Brand)
	}
	if p.SKU != created.SKU || p.Slug != created.Slug {
		t.Fatalf("sku/slug changed on update: sku=%q slug=%q", p.SKU, p.Slug)
	}
	if p.MetaTitle != created.MetaTitle ||
		p.MetaDescription != created.MetaDescription ||
		p.MetaKeywords != created.MetaKeywords {
		t.Fatalf("meta fields re-derived on update: title=%q keywords=%q", p.MetaTitle, p.MetaKeywords)
	}
}

func TestUpdateRequiresTitleAndDescription(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 203", 10))

	upd := validInput("", 10)
	upd.Title = ""
	_, err := productSvc.Update(context.Background(), owner.ID, id, upd)
	status, msg := HTTPStatus(err)
	if status != 400 || msg != "Title is required." {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}

	upd = validInput("", 10)
	upd.Description = ""
	_, err = productSvc.Update(context.Background(), owner.ID, id, upd)
	status, msg = HTTPStatus(err)
	if status != 400 || msg != "Description is required." {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	other := seedUser(t, db, user.RoleManager)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 106", 10))

	_, err := productSvc.Update(context.Background(), other.ID, id, validInput("SNK 106", 10))
	status, _ := HTTPStatus(err)
	if status != 401 {
		t.Fatalf("non-owner update should be unauthorized, got %d", status)
	}
}

func TestUpdateBadCategoryLeavesProductIntact(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 107", 10))

	upd := validInput("SNK 107", 1)
	upd.Title = "Should Not Persist"
	upd.CategoryIDs = []string{"missing"}
	_, err := productSvc.Update(context.Background(), owner.ID, id, upd)
	if err == nil {
		t.Fatal("expected update to fail")
	}

	p, err := productSvc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "Classic White Sneakers" || p.Stock != 10 {
		t.Fatalf("product changed after failed update: title=%q stock=%d", p.Title, p.Stock)
	}
	if len(p.Images) != 1 || len(p.Sizes) != 2 {
		t.Fatalf("children changed after failed update: images=%d sizes=%d", len(p.Images), len(p.Sizes))
	}
}

func TestUpdateReconcilesNotifications(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 108", 2))

	var count int64
	db.Model(&notification.Notification{}).Where("product_id = ?", id).Count(&count)
	if count != 1 {
		t.Fatalf("expected low-stock notification after create, got %d", count)
	}

	upd := validInput("SNK 108", 50)
	if _, err := productSvc.Update(context.Background(), owner.ID, id, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	db.Model(&notification.Notification{}).Where("product_id = ?", id).Count(&count)
	if count != 0 {
		t.Fatalf("restock update should clear notifications, got %d", count)
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	store := &stubStore{}
	db, productSvc, _, _ := newProductStack(t, store)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 109", 2))

	result, err := productSvc.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}

	if _, err := productSvc.Get(context.Background(), id); err == nil {
		t.Fatal("expected product gone")
	} else if status, _ := HTTPStatus(err); status != 404 {
		t.Fatalf("expected 404 for deleted product, got %d", status)
	}
	var count int64
	db.Model(&product.Image{}).Where("product_id = ?", id).Count(&count)
	if count != 0 {
		t.Fatalf("images not deleted: %d", count)
	}
	db.Model(&product.Size{}).Where("product_id = ?", id).Count(&count)
	if count != 0 {
		t.Fatalf("sizes not deleted: %d", count)
	}
	db.Model(&notification.Notification{}).Where("product_id = ?", id).Count(&count)
	if count != 0 {
		t.Fatalf("notifications not deleted: %d", count)
	}
	if len(store.removed) != 1 {
		t.Fatalf("expected 1 storage removal, got %d", len(store.removed))
	}
}

func TestDeleteStorageFailureYieldsWarnings(t *testing.T) {
	store := &stubStore{fail: true}
	db, productSvc, _, _ := newProductStack(t, store)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 110", 10))

	result, err := productSvc.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("storage failure must not fail the delete: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}

	// 数据库删除不受存储失败影响
	var count int64
	db.Model(&product.Product{}).Where("id = ?", id).Count(&count)
	if count != 0 {
		t.Fatal("product row should be gone despite storage failure")
	}
}

func TestDeleteIsAllOrNothing(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	id := mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 111", 2))

	// 注入错误：删除 sizes 时失败，整个事务必须回滚
	err := db.Callback().Delete().Before("gorm:delete").Register("test_fail_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "sizes" {
			tx.AddError(errors.New("injected failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer func() { _ = db.Callback().Delete().Remove("test_fail_delete") }()

	if _, err := productSvc.Delete(context.Background(), id); err == nil {
		t.Fatal("expected delete to fail")
	}

	var count int64
	db.Model(&product.Product{}).Where("id = ?", id).Count(&count)
	if count != 1 {
		t.Fatal("product should survive a failed delete")
	}
	db.Model(&notification.Notification{}).Where("product_id = ?", id).Count(&count)
	if count != 1 {
		t.Fatal("notification delete should have been rolled back")
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	db, productSvc, categorySvc, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	ctx := context.Background()

	shoes, _ := categorySvc.Create(ctx, "Shoes")

	cheap := validInput("SNK 112", 10)
	cheap.Price = decimal.NewFromInt(20)
	cheap.CategoryIDs = []string{shoes.ID}
	mustCreateProduct(t, productSvc, owner.ID, cheap)

	pricey := validInput("SNK 113", 0)
	pricey.Price = decimal.NewFromInt(200)
	mustCreateProduct(t, productSvc, owner.ID, pricey)

	min := decimal.NewFromInt(100)
	result, err := productSvc.List(ctx, &product.ListFilter{MinPrice: &min})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("minPrice filter: total = %d", result.TotalCount)
	}

	result, err = productSvc.List(ctx, &product.ListFilter{Category: "Shoes"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("category filter: total = %d", result.TotalCount)
	}

	result, err = productSvc.List(ctx, &product.ListFilter{InStock: true})
	if err != nil {
		t.Fatalf("list in stock: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("inStock filter: total = %d", result.TotalCount)
	}

	result, err = productSvc.List(ctx, &product.ListFilter{Sort: product.SortPriceHigh})
	if err != nil {
		t.Fatalf("list sorted: %v", err)
	}
	if len(result.Products) != 2 || !result.Products[0].Price.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("price-high sort order wrong")
	}
	if result.TotalPages != 1 {
		t.Fatalf("totalPages = %d", result.TotalPages)
	}
}

func TestStatsCountsLowStock(t *testing.T) {
	db, productSvc, _, _ := newProductStack(t, nil)
	owner := seedUser(t, db, user.RoleAdmin)
	mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 114", 2))
	mustCreateProduct(t, productSvc, owner.ID, validInput("SNK 115", 50))

	total, err := productSvc.TotalCount(context.Background())
	if err != nil {
		t.Fatalf("total count: %v", err)
	}
	if total != 2 {
		t.Fatalf("totalCount = %d", total)
	}
	low, err := productSvc.LowStockCount(context.Background())
	if err != nil {
		t.Fatalf("low stock count: %v", err)
	}
	if low != 1 {
		t.Fatalf("lowStock = %d", low)
	}
	if revenue := productSvc.MockRevenue(); revenue < 10000 || revenue >= 60000 {
		t.Fatalf("revenue out of range: %d", revenue)
	}
}

func TestGetUnknownProductIs404(t *testing.T) {
	_, productSvc, _, _ := newProductStack(t, nil)
	_, err := productSvc.Get(context.Background(), "missing")
	status, msg := HTTPStatus(err)
	if status != 404 || msg != "Product not found" {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}
