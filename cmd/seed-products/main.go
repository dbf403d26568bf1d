package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
	"github.com/mrbata-dev/Product-Stock/internal/logger"
	"github.com/mrbata-dev/Product-Stock/internal/repository/postgres"
	"github.com/mrbata-dev/Product-Stock/internal/service"
)

type seedProduct struct {
	Title       string
	Description string
	Price       string
	Discount    string
	Stock       int
	SKU         string
	Brand       string
	Gender      string
	Sizes       []string
	Categories  []string
	Image       string
}

var seedCategories = []string{"Shoes", "Shirts", "Pants", "Accessories"}

var seedProducts = []seedProduct{
	{
		Title:       "Classic White Sneakers",
		Description: "Timeless low-top sneakers with a cushioned insole and durable rubber outsole. Pairs with almost anything in your wardrobe.",
		Price:       "79.99", Discount: "10", Stock: 42, SKU: "SNK 001", Brand: "Stride",
		Gender: "unisex", Sizes: []string{"40", "41", "42", "43"}, Categories: []string{"Shoes"},
		Image: "https://placehold.co/600x600?text=Sneakers",
	},
	{
		Title:       "Oxford Button-Down Shirt",
		Description: "Crisp cotton oxford shirt with a tailored fit. Machine washable and wrinkle resistant for everyday wear.",
		Price:       "49.50", Discount: "0", Stock: 25, SKU: "SHT 010", Brand: "Harborline",
		Gender: "male", Sizes: []string{"S", "M", "L", "XL"}, Categories: []string{"Shirts"},
		Image: "https://placehold.co/600x600?text=Oxford+Shirt",
	},
	{
		Title:       "High-Rise Slim Jeans",
		Description: "Stretch denim with a flattering high-rise cut. Holds its shape wash after wash.",
		Price:       "64.00", Discount: "15", Stock: 18, SKU: "JNS 204", Brand: "Bluegrain",
		Gender: "female", Sizes: []string{"26", "28", "30", "32"}, Categories: []string{"Pants"},
		Image: "https://placehold.co/600x600?text=Jeans",
	},
	{
		Title:       "Leather Weekender Bag",
		Description: "Full-grain leather duffel with brass hardware and a detachable shoulder strap. Fits in most overhead compartments.",
		Price:       "189.00", Discount: "0", Stock: 7, SKU: "BAG 330", Brand: "Caravelle",
		Gender: "unisex", Sizes: nil, Categories: []string{"Accessories"},
		Image: "https://placehold.co/600x600?text=Weekender",
	},
	{
		Title:       "Merino Wool Beanie",
		Description: "Soft merino knit beanie, breathable and itch free.",
		Price:       "24.00", Discount: "5", Stock: 3, SKU: "ACC 101", Brand: "Northloop",
		Gender: "unisex", Sizes: nil, Categories: []string{"Accessories"},
		Image: "https://placehold.co/600x600?text=Beanie",
	},
	{
		Title:       "Trail Running Shoes",
		Description: "Aggressive lug pattern and rock plate for technical terrain. Quick-dry mesh upper keeps feet cool on long runs.",
		Price:       "119.95", Discount: "20", Stock: 31, SKU: "SNK 055", Brand: "Stride",
		Gender: "male", Sizes: []string{"41", "42", "43", "44", "45"}, Categories: []string{"Shoes"},
		Image: "https://placehold.co/600x600?text=Trail+Shoes",
	},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.InitLogger(); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	db := postgres.Init(&cfg.Postgres)
	ctx := context.Background()

	fmt.Println("🌱 开始填充演示数据...")
	fmt.Println(strings.Repeat("=", 60))

	// 步骤1: 管理员账号
	fmt.Println("\n[1/3] 创建管理员账号...")
	admin, err := ensureAdmin(ctx, db)
	if err != nil {
		log.Fatalf("创建管理员失败: %v", err)
	}
	fmt.Printf("✅ 管理员: %s\n", admin.Email)

	// 步骤2: 分类
	fmt.Println("\n[2/3] 创建分类...")
	categoryRepo := postgres.NewCategoryRepository(db)
	categorySvc := service.NewCategoryService(categoryRepo)
	categoryIDs := map[string]string{}
	for _, title := range seedCategories {
		c, err := categorySvc.Create(ctx, title)
		if err != nil {
			// 已存在则复用
			existing, gerr := categoryRepo.GetByTitle(ctx, title)
			if gerr != nil {
				log.Fatalf("创建分类 %s 失败: %v", title, err)
			}
			categoryIDs[title] = existing.ID
			fmt.Printf("⏭  分类已存在: %s\n", title)
			continue
		}
		categoryIDs[title] = c.ID
		fmt.Printf("✅ 分类: %s\n", title)
	}

	// 步骤3: 商品
	fmt.Println("\n[3/3] 创建商品...")
	productRepo := postgres.NewProductRepository(db)
	notificationSvc := service.NewNotificationService(postgres.NewNotificationRepository(db))
	productSvc := service.NewProductService(db, productRepo, categoryRepo, notificationSvc, nil)

	created := 0
	for _, sp := range seedProducts {
		price, _ := decimal.NewFromString(sp.Price)
		discount, _ := decimal.NewFromString(sp.Discount)
		ids := make([]string, 0, len(sp.Categories))
		for _, title := range sp.Categories {
			ids = append(ids, categoryIDs[title])
		}
		_, err := productSvc.Create(ctx, admin.ID, &service.ProductInput{
			Title:              sp.Title,
			Description:        sp.Description,
			Price:              price,
			DiscountPercentage: discount,
			Stock:              sp.Stock,
			SKU:                sp.SKU,
			Brand:              sp.Brand,
			Gender:             sp.Gender,
			Images:             []string{sp.Image},
			Sizes:              sp.Sizes,
			CategoryIDs:        ids,
		})
		if err != nil {
			fmt.Printf("⏭  跳过 %s: %v\n", sp.Title, err)
			continue
		}
		created++
		fmt.Printf("✅ 商品: %s (库存 %d)\n", sp.Title, sp.Stock)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("🎉 完成：新建 %d 个商品\n", created)
}

// ensureAdmin 幂等创建演示管理员（admin@example.com / admin123）
func ensureAdmin(ctx context.Context, db *gorm.DB) (*user.User, error) {
	repo := postgres.NewUserRepository(db)
	existing, err := repo.GetByEmail(ctx, "admin@example.com")
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 12)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		ID:       uuid.NewString(),
		Name:     "Demo Admin",
		Email:    "admin@example.com",
		Password: string(hash),
		Role:     user.RoleAdmin,
		IsActive: true,
	}
	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
