package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
)

type projectResponse struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	Slug             string             `json:"slug"`
	ShortDescription string             `json:"short_description"`
	LongDescription  string             `json:"long_description,omitempty"`
	Technology       catalog.Technology `json:"technology"`
	Price            decimal.Decimal    `json:"price"`
	Image            string             `json:"image,omitempty"`
	DemoVideoURL     *string            `json:"demo_video_url,omitempty"`
	Featured         bool               `json:"featured"`
	Downloads        int                `json:"downloads"`
	CreatedAt        time.Time          `json:"created_at"`
}

type pageResponse struct {
	Projects     []projectResponse    `json:"projects"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	Total        int                  `json:"total"`
	Technologies []catalog.Technology `json:"technologies"`
}

type homeResponse struct {
	Featured []projectResponse `json:"featured"`
	Recent   []projectResponse `json:"recent"`
}

type detailResponse struct {
	Project      projectResponse   `json:"project"`
	HasPurchased bool              `json:"has_purchased"`
	Related      []projectResponse `json:"related"`
}

// toResponse omits the long description and the file reference; detail adds
// the description back.
func toResponse(p *catalog.Project) projectResponse {
	return projectResponse{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Technology:       p.Technology,
		Price:            p.Price,
		Image:            p.Image,
		DemoVideoURL:     p.DemoVideoURL,
		Featured:         p.Featured,
		Downloads:        p.Downloads,
		CreatedAt:        p.CreatedAt,
	}
}

func toResponseList(projects []*catalog.Project) []projectResponse {
	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toResponse(p)
	}

	return resp
}
