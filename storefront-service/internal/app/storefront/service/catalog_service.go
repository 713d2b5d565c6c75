package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/storefront-service/internal/app/storefront/entity"
	"brisamarket/storefront-service/internal/app/storefront/repository"

	"github.com/google/uuid"
)

const productCacheTTL = 5 * time.Minute

// CatalogService обрабатывает операции с товарами
// Список товаров кешируется в Redis, любая мутация инвалидирует кеш
type CatalogService struct {
	productRepo repository.ProductRepository
	cache       ProductCache
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(productRepo repository.ProductRepository, cache ProductCache) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		cache:       cache,
	}
}

// CreateProduct создает новый товар (продавец или админ)
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req *entity.CreateProductRequest) (*entity.Product, error) {
	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return nil, ErrInvalidDiscountPrice
	}

	product := &entity.Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Category:      req.Category,
		Brand:         req.Brand,
		Images:        req.Images,
		MainImage:     req.MainImage,
		Stock:         req.Stock,
		Active:        true,
		SellerID:      sellerID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCache(ctx)

	return product, nil
}

// GetProduct получает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetProducts получает все активные товары, сначала пробуя кеш
func (s *CatalogService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	cached, err := s.cache.GetProducts(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read products from cache")
	}
	if cached != nil {
		return cached, nil
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if err := s.cache.SetProducts(ctx, products, productCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache products")
	}

	return products, nil
}

// UpdateProduct обновляет товар. Разрешено владельцу-продавцу или админу
// Рейтинг и число отзывов через этот метод не меняются
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, userID uuid.UUID, role string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product.SellerID != userID && role != roleAdmin {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.MainImage != nil {
		product.MainImage = *req.MainImage
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if product.DiscountPrice != nil && *product.DiscountPrice >= product.Price {
		return nil, ErrInvalidDiscountPrice
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCache(ctx)

	return product, nil
}

// DeleteProduct удаляет товар. Разрешено владельцу-продавцу или админу
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID, userID uuid.UUID, role string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if product.SellerID != userID && role != roleAdmin {
		return ErrForbidden
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidateCache(ctx)

	return nil
}

// invalidateCache сбрасывает кеш каталога. Ошибка не прерывает операцию:
// кеш истечёт сам по TTL
func (s *CatalogService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate products cache")
	}
}
