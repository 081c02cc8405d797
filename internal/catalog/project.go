package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("project not found")

// Technology is the closed set of catalog categories.
type Technology string

const (
	TechPython          Technology = "Python"
	TechJava            Technology = "Java"
	TechWebDevelopment  Technology = "Web Development"
	TechMachineLearning Technology = "Machine Learning"
	TechGenAI           Technology = "Gen AI"
	TechAndroid         Technology = "Android"
	TechDataScience     Technology = "Data Science"
	TechBlockchain      Technology = "Blockchain"
	TechARVR            Technology = "AR/VR"
	TechEmbedded        Technology = "Embedded Systems"
)

// Technologies lists every category in display order.
var Technologies = []Technology{
	TechPython,
	TechJava,
	TechWebDevelopment,
	TechMachineLearning,
	TechGenAI,
	TechAndroid,
	TechDataScience,
	TechBlockchain,
	TechARVR,
	TechEmbedded,
}

func (t Technology) Valid() bool {
	for _, known := range Technologies {
		if t == known {
			return true
		}
	}

	return false
}

// Project is a purchasable catalog item.
type Project struct {
	ID               uuid.UUID
	Title            string
	Slug             string
	ShortDescription string
	LongDescription  string
	Technology       Technology
	Price            decimal.Decimal
	Image            string // storage reference
	DemoVideoURL     *string
	File             string // storage reference of the downloadable asset
	IsActive         bool
	Featured         bool
	Downloads        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
