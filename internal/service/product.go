package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flicky/storefront-gateway/internal/dto"
	"github.com/flicky/storefront-gateway/internal/model"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

const (
	catalogCacheTTL = 60 * time.Second
	productsKey     = "products:all"
	maxImageBytes   = 16 << 20
)

type CatalogAPI interface {
	Products(ctx context.Context) ([]model.Product, error)
	ProductByID(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, sellerID int64, req dto.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, req dto.UpdateProductRequest) (*model.Product, error)
	ReviewsByProduct(ctx context.Context, productID int64) ([]model.Review, error)
	CreateReview(ctx context.Context, reviewerID int64, req dto.CreateReviewRequest) (*model.Review, error)
}

// CatalogService fronts the backend catalog with a short read-through cache.
// The backend stays authoritative; the cache only absorbs repeated reads of
// the listing and detail pages.
type CatalogService struct {
	api         CatalogAPI
	redisClient *redis.Client
}

func NewCatalogService(api CatalogAPI, redisClient *redis.Client) *CatalogService {
	return &CatalogService{api: api, redisClient: redisClient}
}

func (s *CatalogService) List(ctx context.Context) ([]model.Product, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, productsKey).Result(); err == nil {
			var products []model.Product
			if json.Unmarshal([]byte(cached), &products) == nil {
				return products, nil
			}
		}
	}

	products, err := s.api.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(products); err == nil {
			s.redisClient.Set(ctx, productsKey, data, catalogCacheTTL)
		}
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*model.Product, error) {
	cacheKey := fmt.Sprintf("product:%d", id)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var product model.Product
			if json.Unmarshal([]byte(cached), &product) == nil {
				return &product, nil
			}
		}
	}

	product, err := s.api.ProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, catalogCacheTTL)
		}
	}
	return product, nil
}

func (s *CatalogService) Create(ctx context.Context, sellerID int64, req dto.CreateProductRequest) (*model.Product, error) {
	if err := checkImageSize(req.Image); err != nil {
		return nil, err
	}
	product, err := s.api.CreateProduct(ctx, sellerID, req)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx, product.ID)
	return product, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) (*model.Product, error) {
	if req.Image != nil {
		if err := checkImageSize(*req.Image); err != nil {
			return nil, err
		}
	}
	product, err := s.api.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, id)
	return product, nil
}

func (s *CatalogService) Reviews(ctx context.Context, productID int64) ([]model.Review, error) {
	reviews, err := s.api.ReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

func (s *CatalogService) AddReview(ctx context.Context, reviewerID int64, req dto.CreateReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	review, err := s.api.CreateReview(ctx, reviewerID, req)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func (s *CatalogService) invalidate(ctx context.Context, id int64) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, productsKey, fmt.Sprintf("product:%d", id))
	}
}

// checkImageSize bounds the decoded size of an inline base64 image. The data
// URL prefix, when present, is not part of the payload.
func checkImageSize(image string) error {
	if image == "" {
		return nil
	}
	if idx := indexComma(image); idx >= 0 {
		image = image[idx+1:]
	}
	if base64.StdEncoding.DecodedLen(len(image)) > maxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

func indexComma(s string) int {
	for i := 0; i < len(s) && i < 64; i++ {
		if s[i] == ',' {
			return i
		}
	}
	return -1
}
