package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

type ProductService struct {
	repo      *repositories.ProductRepo
	analytics *repositories.AnalyticsRepo
	sink      AnalyticsSink
	log       *zap.Logger
}

func NewProductService(repo *repositories.ProductRepo, analytics *repositories.AnalyticsRepo, sink AnalyticsSink, log *zap.Logger) *ProductService {
	return &ProductService{repo: repo, analytics: analytics, sink: sink, log: log}
}

// RequestMeta carries request-scoped context attached to analytics events.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

func (m RequestMeta) apply(e *models.AnalyticsEvent) {
	if m.IP != "" {
		ip := m.IP
		e.IP = &ip
	}
	e.UserAgent = m.UserAgent
	e.Referrer = m.Referrer
}

type ProductInput struct {
	Title           string
	Description     string
	Price           decimal.Decimal
	Currency        string
	Condition       string
	IsActive        *bool
	MinOfferPrice   decimal.Decimal
	LocationCity    string
	LocationState   string
	LocationCountry string
	CategoryID      *uuid.UUID
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.New(apperr.CodeInvalidInput, "title is required")
	}
	if in.Price.IsNegative() {
		return apperr.New(apperr.CodeInvalidInput, "price must be non-negative")
	}
	if in.MinOfferPrice.IsNegative() {
		return apperr.New(apperr.CodeInvalidInput, "min_offer_price must be non-negative")
	}
	if in.Condition != "" && !models.IsValidCondition(in.Condition) {
		return apperr.New(apperr.CodeInvalidInput, "condition must be one of: new, like_new, used")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Product{
		SellerID:        sellerID,
		Title:           in.Title,
		Description:     in.Description,
		Price:           in.Price,
		Currency:        in.Currency,
		Condition:       in.Condition,
		IsActive:        true,
		MinOfferPrice:   in.MinOfferPrice,
		LocationCity:    in.LocationCity,
		LocationState:   in.LocationState,
		LocationCountry: in.LocationCountry,
		CategoryID:      in.CategoryID,
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Condition == "" {
		p.Condition = models.ConditionUsed
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to create product", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, productID, sellerID uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.getOwned(ctx, productID, sellerID)
	if err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.MinOfferPrice = in.MinOfferPrice
	p.LocationCity = in.LocationCity
	p.LocationState = in.LocationState
	p.LocationCountry = in.LocationCountry
	p.CategoryID = in.CategoryID
	if in.Currency != "" {
		p.Currency = in.Currency
	}
	if in.Condition != "" {
		p.Condition = in.Condition
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to update product", err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, productID, sellerID uuid.UUID) error {
	if _, err := s.getOwned(ctx, productID, sellerID); err != nil {
		return err
	}
	// Products referenced by deals are protected at the schema level;
	// the delete fails rather than erasing transaction history.
	if err := s.repo.Delete(ctx, productID); err != nil {
		return apperr.Wrap(apperr.CodeStorage, "failed to delete product", err)
	}
	return nil
}

// Get returns a product and records a view event for the caller.
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID, viewerID *uuid.UUID, meta RequestMeta) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "product lookup failed", err)
	}

	e := models.AnalyticsEvent{
		EventType: models.EventProductView,
		UserID:    viewerID,
		ProductID: &p.ID,
	}
	meta.apply(&e)
	s.sink.Record(ctx, e)

	return p, nil
}

func (s *ProductService) Click(ctx context.Context, productID, userID uuid.UUID, meta RequestMeta) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.CodeNotFound, "product not found")
		}
		return apperr.Wrap(apperr.CodeStorage, "product lookup failed", err)
	}

	e := models.AnalyticsEvent{
		EventType: models.EventProductClick,
		UserID:    &userID,
		ProductID: &p.ID,
	}
	meta.apply(&e)
	s.sink.Record(ctx, e)
	return nil
}

// ListResult is the browse response: listings annotated with view counts,
// plus the caller's last viewed product and the categories they have seen.
type ListResult struct {
	Products          []models.ProductWithStats `json:"products"`
	LastViewedProduct *models.Product           `json:"last_viewed_product,omitempty"`
	CategoriesSeen    []models.Category         `json:"categories_seen,omitempty"`
}

func (s *ProductService) List(ctx context.Context, viewerID *uuid.UUID, f repositories.ProductFilter) (*ListResult, error) {
	f.ExcludeSellerID = viewerID
	products, err := s.repo.ListActive(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "product list failed", err)
	}

	res := &ListResult{Products: products}
	if viewerID == nil {
		return res, nil
	}

	// Personalization is best-effort; a failed projection read does not
	// break browsing.
	if last, err := s.analytics.LastViewedProduct(ctx, *viewerID); err == nil {
		res.LastViewedProduct = last
	} else {
		s.log.Warn("last viewed lookup failed", zap.Error(err))
	}
	if cats, err := s.analytics.CategoriesSeen(ctx, *viewerID); err == nil {
		res.CategoriesSeen = cats
	} else {
		s.log.Warn("categories seen lookup failed", zap.Error(err))
	}
	return res, nil
}

// MineResult is the seller dashboard: own products with per-product and
// total view/click/wishlist counts.
type MineResult struct {
	Products []models.ProductWithStats `json:"products"`
	Totals   MineTotals                `json:"totals"`
}

type MineTotals struct {
	TotalViews     int64 `json:"total_views"`
	TotalClicks    int64 `json:"total_clicks"`
	TotalWishlists int64 `json:"total_wishlists"`
}

func (s *ProductService) Mine(ctx context.Context, sellerID uuid.UUID, limit, offset int) (*MineResult, error) {
	products, err := s.repo.ListMine(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "product list failed", err)
	}

	res := &MineResult{Products: products}
	for _, p := range products {
		res.Totals.TotalViews += p.ViewCount
		res.Totals.TotalClicks += p.ClickCount
		res.Totals.TotalWishlists += p.WishlistCount
	}
	return res, nil
}

// --- Images ---

func (s *ProductService) AddImage(ctx context.Context, productID, sellerID uuid.UUID, url, altText string, sortOrder int) (*models.ProductImage, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "url is required")
	}
	if _, err := s.getOwned(ctx, productID, sellerID); err != nil {
		return nil, err
	}

	img := &models.ProductImage{
		ProductID: productID,
		URL:       url,
		AltText:   altText,
		SortOrder: sortOrder,
	}
	if err := s.repo.CreateImage(ctx, img); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to add image", err)
	}
	return img, nil
}

func (s *ProductService) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	images, err := s.repo.ListImages(ctx, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to list images", err)
	}
	return images, nil
}

func (s *ProductService) DeleteImage(ctx context.Context, imageID, sellerID uuid.UUID) error {
	n, err := s.repo.DeleteImage(ctx, imageID, sellerID)
	if err != nil {
		return apperr.Wrap(apperr.CodeStorage, "failed to delete image", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeNotFound, "image not found")
	}
	return nil
}

func (s *ProductService) getOwned(ctx context.Context, productID, sellerID uuid.UUID) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "product lookup failed", err)
	}
	if p.SellerID != sellerID {
		return nil, apperr.New(apperr.CodeUnauthorized, "not the owner of this product")
	}
	return p, nil
}
