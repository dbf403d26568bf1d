package server

import (
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/category"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/notification"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/product"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
	"github.com/mrbata-dev/Product-Stock/internal/infra/storage"
	"github.com/mrbata-dev/Product-Stock/internal/service"
)

const maxUploadSize = 10 << 20 // 单次上传 10MB

// registerAdminRoutes 注册后台管理接口，全部要求登录
func registerAdminRoutes(api iris.Party,
	userSvc *service.UserService,
	categorySvc *service.CategoryService,
	productSvc *service.ProductService,
	notificationSvc *service.NotificationService,
	store *storage.Client) {

	// ---------- 商品管理 ----------

	// 商品列表（支持筛选 / 排序 / 分页）
	api.Get("/products/getAllProducts", func(ctx iris.Context) {
		filter, err := parseListFilter(ctx)
		if err != nil {
			respondError(ctx, err)
			return
		}
		result, err := productSvc.List(ctx.Request().Context(), filter)
		if err != nil {
			respondError(ctx, err)
			return
		}
		_ = ctx.JSON(result)
	})

	// 创建商品
	api.Post("/products/addProducts", func(ctx iris.Context) {
		var req service.ProductInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Invalid request body"})
			return
		}
		userID := ctx.Values().GetString("user_id")
		p, err := productSvc.Create(ctx.Request().Context(), userID, &req)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		_ = ctx.JSON(iris.Map{
			"message": "Product created successfully",
			"product": p,
		})
	})

	// 商品详情
	api.Get("/products/{id:string}", func(ctx iris.Context) {
		p, err := productSvc.Get(ctx.Request().Context(), ctx.Params().GetString("id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		_ = ctx.JSON(p)
	})

	// 更新商品（全量替换）
	api.Put("/products/{id:string}", func(ctx iris.Context) {
		var req service.ProductInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Invalid request body"})
			return
		}
		userID := ctx.Values().GetString("user_id")
		p, err := productSvc.Update(ctx.Request().Context(), userID, ctx.Params().GetString("id"), &req)
		if err != nil {
			respondError(ctx, err)
			return
		}
		_ = ctx.JSON(iris.Map{
			"message": "Product updated successfully",
			"product": p,
		})
	})

	// 删除商品
	api.Delete("/products/{id:string}", func(ctx iris.Context) {
		result, err := productSvc.Delete(ctx.Request().Context(), ctx.Params().GetString("id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		resp := iris.Map{"message": "Product deleted successfully"}
		if len(result.Warnings) > 0 {
			resp["warnings"] = result.Warnings
		}
		_ = ctx.JSON(resp)
	})

	// 仪表盘统计
	api.Get("/products/stats/total", func(ctx iris.Context) {
		count, err := productSvc.TotalCount(ctx.Request().Context())
		if err != nil {
			respondError(ctx, err)
			return
		}
		_ = ctx.JSON(iris.Map{"count": count})
	})

	api.Get("/products/stats/low-stock", func(ctx iris.Context) {
		count, err := productSvc.LowStockCount(ctx.Request().Context())
		if err != nil {
			respondError(ctx, err)
			return
		}
		_ = ctx.JSON(iris.Map{"count": count})
	})

	api.Get("/products/stats/revenue", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{"total": productSvc.MockRevenue()})
	})

	// 图片上传：multipart 表单，字段名 images，返回公开 URL 列表
	api.Post("/products/uploadImages", func(ctx iris.Context) {
		ctx.SetMaxRequestBodySize(maxUploadSize)
		form, err := ctx.Request().MultipartReader()
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Expected multipart form data"})
			return
		}
		var urls []string
		for {
			part, err := form.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				ctx.StopWithJSON(400, iris.Map{"error": "Malformed multipart form"})
				return
			}
			if part.FormName() != "images" || part.FileName() == "" {
				continue
			}
			if len(urls) >= 5 {
				ctx.StopWithJSON(400, iris.Map{"error": "Maximum 5 images allowed."})
				return
			}
			body, err := io.ReadAll(io.LimitReader(part, maxUploadSize))
			if err != nil {
				ctx.StopWithJSON(400, iris.Map{"error": "Failed to read uploaded file"})
				return
			}
			contentType := part.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			objectName := uuid.NewString() + "-" + filepath.Base(part.FileName())
			url, err := store.Upload(objectName, body, contentType)
			if err != nil {
				service.GetMonitor().RecordStorageError()
				ctx.StopWithJSON(500, iris.Map{"error": "Failed to upload " + part.FileName()})
				return
			}
			urls = append(urls, url)
		}
		if len(urls) == 0 {
			ctx.StopWithJSON(400, iris.Map{"error": "No images provided"})
			return
		}
		_ = ctx.JSON(iris.Map{"urls": urls})
	})

	// ---------- 分类管理 ----------

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.List(ctx.Request().Context())
		if err != nil {
			respondError(ctx, err)
			return
		}
		if list == nil {
			list = []*category.Category{}
		}
		_ = ctx.JSON(list)
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req struct {
			Title string `json:"title"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Invalid request body"})
			return
		}
		c, err := categorySvc.Create(ctx.Request().Context(), req.Title)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		_ = ctx.JSON(c)
	})

	// ---------- 客户管理 ----------

	api.Get("/customer", func(ctx iris.Context) {
		list, err := userSvc.ListCustomers(ctx.Request().Context(),
			ctx.URLParam("search"), ctx.URLParam("role"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		if list == nil {
			list = []user.Summary{}
		}
		_ = ctx.JSON(list)
	})

	// ---------- 通知 ----------

	// 低库存通知面板，仅管理员可见
	api.Get("/notification", func(ctx iris.Context) {
		if ctx.Values().GetString("role") != "ADMIN" {
			ctx.StopWithJSON(401, iris.Map{"error": "Unauthorized"})
			return
		}
		list, err := notificationSvc.ListUnread(ctx.Request().Context())
		if err != nil {
			respondError(ctx, err)
			return
		}
		if list == nil {
			list = []*notification.View{}
		}
		_ = ctx.JSON(list)
	})

}

// parseListFilter 从查询参数解析商品列表筛选条件
func parseListFilter(ctx iris.Context) (*product.ListFilter, error) {
	f := &product.ListFilter{
		Page:     ctx.URLParamIntDefault("page", 1),
		Limit:    ctx.URLParamIntDefault("limit", 10),
		Category: ctx.URLParam("category"),
		Gender:   ctx.URLParam("gender"),
		Brand:    ctx.URLParam("brand"),
		Discount: ctx.URLParamExists("discount"),
		InStock:  ctx.URLParam("stock") == "true",
		Sort:     product.SortOrder(ctx.URLParamDefault("sort", string(product.SortLatest))),
	}
	if !product.ValidGender(f.Gender) {
		return nil, service.ErrValidation("Invalid gender value. Allowed: male, female, unisex.")
	}
	if v := ctx.URLParam("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, service.ErrValidation("Invalid minPrice value.")
		}
		f.MinPrice = &d
	}
	if v := ctx.URLParam("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, service.ErrValidation("Invalid maxPrice value.")
		}
		f.MaxPrice = &d
	}
	return f, nil
}
