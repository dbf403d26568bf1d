package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	fmt.Println("==========================================")
	fmt.Println("    后台管理 API 冒烟测试")
	fmt.Println("==========================================")
	fmt.Println()

	// 1. 注册用户
	fmt.Println("1. 注册用户...")
	email := fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())
	signupResp, status, err := httpPost(baseURL+"/api/auth/signup", map[string]interface{}{
		"uname":    "Smoke Tester",
		"email":    email,
		"password": "smoketest123",
	}, "")
	if err != nil {
		fmt.Printf("   注册失败: %v\n", err)
		return
	}
	fmt.Printf("   注册 [%d]: %v\n", status, signupResp)

	// 2. 登录获取 token
	fmt.Println("\n2. 登录获取token...")
	loginResp, status, err := httpPost(baseURL+"/api/auth/login", map[string]interface{}{
		"email":    email,
		"password": "smoketest123",
	}, "")
	if err != nil || status != 200 {
		fmt.Printf("   登录失败 [%d]: %v %v\n", status, loginResp, err)
		return
	}
	token, _ := loginResp["token"].(string)
	fmt.Printf("   Token: %.24s...\n", token)

	// 3. 创建分类
	fmt.Println("\n3. 创建分类...")
	catResp, status, err := httpPost(baseURL+"/api/categories", map[string]interface{}{
		"title": fmt.Sprintf("Smoke %d", time.Now().Unix()),
	}, token)
	if err != nil {
		fmt.Printf("   失败: %v\n", err)
		return
	}
	catID, _ := catResp["id"].(string)
	fmt.Printf("   分类 [%d]: %s\n", status, catID)

	// 4. 创建商品（低库存，应触发通知）
	fmt.Println("\n4. 创建低库存商品...")
	prodResp, status, err := httpPost(baseURL+"/api/products/addProducts", map[string]interface{}{
		"title":       "Smoke Test Product",
		"description": "Created by the smoke test.",
		"price":       19.99,
		"stock":       3,
		"sku":         fmt.Sprintf("SMK %d", time.Now().Unix()),
		"images":      []string{"https://placehold.co/600x600?text=Smoke"},
		"categoryIds": []string{catID},
	}, token)
	if err != nil || status != 201 {
		fmt.Printf("   失败 [%d]: %v %v\n", status, prodResp, err)
		return
	}
	product, _ := prodResp["product"].(map[string]interface{})
	productID, _ := product["id"].(string)
	fmt.Printf("   商品 [%d]: %s\n", status, productID)

	// 5. 商品列表
	fmt.Println("\n5. 商品列表...")
	listResp, status, err := httpGet(baseURL+"/api/products/getAllProducts?limit=5", token)
	if err != nil {
		fmt.Printf("   失败: %v\n", err)
	} else {
		fmt.Printf("   列表 [%d]: total=%v\n", status, listResp["totalCount"])
	}

	// 6. 更新商品（补货到 20，通知应被清除）
	fmt.Println("\n6. 补货更新商品...")
	product["stock"] = 20
	updResp, status, err := httpPut(baseURL+"/api/products/"+productID, map[string]interface{}{
		"title":       "Smoke Test Product",
		"description": "Created by the smoke test.",
		"price":       19.99,
		"stock":       20,
		"sku":         product["sku"],
		"images":      []string{"https://placehold.co/600x600?text=Smoke"},
		"categoryIds": []string{catID},
	}, token)
	if err != nil {
		fmt.Printf("   失败: %v\n", err)
	} else {
		fmt.Printf("   更新 [%d]: %v\n", status, updResp["message"])
	}

	// 7. 仪表盘统计
	fmt.Println("\n7. 仪表盘统计...")
	statsResp, status, err := httpGet(baseURL+"/api/products/stats/total", token)
	if err != nil {
		fmt.Printf("   失败: %v\n", err)
	} else {
		fmt.Printf("   统计 [%d]: %v\n", status, statsResp)
	}

	// 8. 删除商品
	fmt.Println("\n8. 删除商品...")
	delResp, status, err := httpDelete(baseURL+"/api/products/"+productID, token)
	if err != nil {
		fmt.Printf("   失败: %v\n", err)
	} else {
		fmt.Printf("   删除 [%d]: %v\n", status, delResp["message"])
	}

	// 9. 登录限流
	fmt.Println("\n9. 登录限流 (连续错误密码)...")
	throttled := 0
	for i := 0; i < 8; i++ {
		_, status, _ := httpPost(baseURL+"/api/auth/login", map[string]interface{}{
			"email":    email,
			"password": "wrongpassword",
		}, "")
		if status == 429 {
			throttled++
		}
	}
	fmt.Printf("   429 次数: %d\n", throttled)

	fmt.Println("\n==========================================")
	fmt.Println("    冒烟测试完成")
	fmt.Println("==========================================")
}

func httpGet(url, token string) (map[string]interface{}, int, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	return doRequest(req, token)
}

func httpPost(url string, body interface{}, token string) (map[string]interface{}, int, error) {
	return httpSend(http.MethodPost, url, body, token)
}

func httpPut(url string, body interface{}, token string) (map[string]interface{}, int, error) {
	return httpSend(http.MethodPut, url, body, token)
}

func httpDelete(url, token string) (map[string]interface{}, int, error) {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return nil, 0, err
	}
	return doRequest(req, token)
}

func httpSend(method, url string, body interface{}, token string) (map[string]interface{}, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doRequest(req, token)
}

func doRequest(req *http.Request, token string) (map[string]interface{}, int, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var m map[string]interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("invalid json: %s", data)
		}
	}
	return m, resp.StatusCode, nil
}
