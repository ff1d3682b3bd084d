package service

import (
	"context"
	"strings"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
)

type bannerSource struct {
	title string
	file  string
	text  string
}

var banners = []bannerSource{
	{title: "Burger", file: "burger.jpg", text: "Tasty Burger at your door step"},
	{title: "Spices", file: "food.jpg", text: "All Cuisines"},
	{title: "New York", file: "tasty.jpg", text: "Food is incomplete without a tasty dessert"},
}

type CatalogService struct {
	products  repository.ProductRepository
	mediaURL  string
	staticURL string
	log       *logger.Logger
}

func NewCatalogService(products repository.ProductRepository, mediaURL, staticURL string, log *logger.Logger) *CatalogService {
	return &CatalogService{
		products:  products,
		mediaURL:  mediaURL,
		staticURL: staticURL,
		log:       log.WithComponent("catalog_service"),
	}
}

// ListAvailableProducts returns products sold by at least one restaurant,
// with image references resolved against the media URL.
func (s *CatalogService) ListAvailableProducts(ctx context.Context) ([]models.AvailableProduct, error) {
	products, err := s.products.ListAvailable(ctx)
	if err != nil {
		s.log.FromContext(ctx).Error("failed to list available products", "error", err)
		return nil, err
	}

	out := make([]models.AvailableProduct, len(products))
	for i, p := range products {
		p.Image = joinURL(s.mediaURL, p.Image)
		out[i] = p
	}

	return out, nil
}

func (s *CatalogService) Banners() []models.Banner {
	out := make([]models.Banner, 0, len(banners))
	for _, b := range banners {
		out = append(out, models.Banner{
			Title: b.title,
			Src:   joinURL(s.staticURL, b.file),
			Text:  b.text,
		})
	}
	return out
}

func joinURL(base, name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") || strings.HasPrefix(name, "/") {
		return name
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}
