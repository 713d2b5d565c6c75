package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/pkg/metrics"
	"brisamarket/storefront-service/internal/app/storefront/entity"
	"brisamarket/storefront-service/internal/app/storefront/infrastructure"
	"brisamarket/storefront-service/internal/app/storefront/repository"

	"github.com/google/uuid"
)

// ReviewService обрабатывает отзывы и пересчитывает рейтинг товара
// Рейтинг всегда пересчитывается по полному набору отзывов,
// без инкрементальных поправок - результат не зависит от порядка событий
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	publisher   infrastructure.MessagePublisher

	// Пересчёты рейтинга одного товара сериализуются,
	// разные товары пересчитываются параллельно
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	publisher infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		publisher:   publisher,
		locks:       make(map[string]*sync.Mutex),
	}
}

// CreateReview создает отзыв и пересчитывает рейтинг товара
// Пользователь может оставить только один отзыв на товар
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, productID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(ctx, userID.String(), productID.String())
	if err != nil && !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateReview
	}

	now := time.Now()
	review := &entity.Review{
		ProductID: productID.String(),
		UserID:    userID.String(),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// Уникальный индекс ловит гонку двух одновременных создании
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.recalcProductRating(ctx, productID); err != nil {
		logger.Error().
			Err(err).
			Str("product_id", productID.String()).
			Msg("Failed to recalculate product rating after review creation")
	}

	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	})

	return review, nil
}

// GetProductReviews получает все отзывы на товар
func (s *ReviewService) GetProductReviews(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// UpdateReview обновляет отзыв и пересчитывает рейтинг при смене оценки
// Редактировать может только автор или админ
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, userID uuid.UUID, role string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.getOwnedReview(ctx, reviewID, userID, role)
	if err != nil {
		return nil, err
	}

	ratingChanged := false
	if req.Rating != 0 && req.Rating != review.Rating {
		review.Rating = req.Rating
		ratingChanged = true
	}
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}
	review.UpdatedAt = time.Now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if ratingChanged {
		productID, err := uuid.Parse(review.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id in review: %w", err)
		}
		if err := s.recalcProductRating(ctx, productID); err != nil {
			logger.Error().
				Err(err).
				Str("product_id", review.ProductID).
				Msg("Failed to recalculate product rating after review update")
		}
	}

	return review, nil
}

// DeleteReview удаляет отзыв и пересчитывает рейтинг товара
// После удаления последнего отзыва рейтинг обнуляется
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, userID uuid.UUID, role string) error {
	review, err := s.getOwnedReview(ctx, reviewID, userID, role)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	productID, err := uuid.Parse(review.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product id in review: %w", err)
	}
	if err := s.recalcProductRating(ctx, productID); err != nil {
		logger.Error().
			Err(err).
			Str("product_id", review.ProductID).
			Msg("Failed to recalculate product rating after review deletion")
	}

	return nil
}

// LikeReview увеличивает счётчик лайков. Рейтинг товара не трогает
func (s *ReviewService) LikeReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.AddLike(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to like review: %w", err)
	}

	return review, nil
}

// DislikeReview увеличивает счётчик дизлайков. Рейтинг товара не трогает
func (s *ReviewService) DislikeReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.AddDislike(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to dislike review: %w", err)
	}

	return review, nil
}

// VerifyReview отмечает отзыв как подтверждённую покупку (админ)
func (s *ReviewService) VerifyReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.SetVerified(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to verify review: %w", err)
	}

	return review, nil
}

// getOwnedReview получает отзыв с проверкой доступа: автор или админ
func (s *ReviewService) getOwnedReview(ctx context.Context, reviewID string, userID uuid.UUID, role string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != userID.String() && role != roleAdmin {
		return nil, ErrForbidden
	}

	return review, nil
}

// recalcProductRating пересчитывает рейтинг товара по полному набору отзывов
// Среднее округляется до одного знака, ноль отзывов обнуляет рейтинг
func (s *ReviewService) recalcProductRating(ctx context.Context, productID uuid.UUID) error {
	lock := s.productLock(productID.String())
	lock.Lock()
	defer lock.Unlock()

	stats, err := s.reviewRepo.AggregateRating(ctx, productID.String())
	if err != nil {
		return fmt.Errorf("failed to aggregate rating: %w", err)
	}

	rating := 0.0
	if stats.NumReviews > 0 {
		rating = roundRating(stats.AvgRating)
	}

	if err := s.productRepo.UpdateRating(ctx, productID, rating, stats.NumReviews); err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	metrics.RatingRecomputes.WithLabelValues("storefront-service").Inc()

	return nil
}

// productLock возвращает мьютекс пересчёта для конкретного товара
func (s *ReviewService) productLock(productID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.locks[productID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[productID] = lock
	}
	return lock
}

// publishReviewEvent отправляет событие отзыва в Kafka
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal review event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.ProductID, eventData); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Str("review_id", event.ReviewID).
			Msg("Failed to publish review event")
	}
}
