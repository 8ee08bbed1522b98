package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/flicky/storefront-gateway/internal/dto"
	"github.com/flicky/storefront-gateway/internal/model"
)

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Client) ProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/%d", id), nil, nil, &product); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &product, nil
}

// CreateProduct lists a new product; the image travels as an inline base64
// string inside the JSON body, never as a multipart upload.
func (c *Client) CreateProduct(ctx context.Context, sellerID int64, req dto.CreateProductRequest) (*model.Product, error) {
	payload := struct {
		dto.CreateProductRequest
		SellerID int64 `json:"seller_id"`
	}{CreateProductRequest: req, SellerID: sellerID}

	var product model.Product
	if err := c.do(ctx, http.MethodPost, "/create_product", nil, payload, &product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req dto.UpdateProductRequest) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/product/%d", id), nil, req, &product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &product, nil
}

func (c *Client) ReviewsByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	var reviews []model.Review
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reviews/product/%d", productID), nil, nil, &reviews); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (c *Client) CreateReview(ctx context.Context, reviewerID int64, req dto.CreateReviewRequest) (*model.Review, error) {
	payload := struct {
		dto.CreateReviewRequest
		ReviewerID int64 `json:"reviewer_id"`
	}{CreateReviewRequest: req, ReviewerID: reviewerID}

	var review model.Review
	if err := c.do(ctx, http.MethodPost, "/create_review", nil, payload, &review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}
