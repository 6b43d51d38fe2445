package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type catalogOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// A slice of the FIPE car catalog, enough to pick a car offline.
var (
	catalogBrands = []catalogOption{
		{Code: "21", Name: "Fiat"},
		{Code: "22", Name: "Ford"},
		{Code: "23", Name: "GM - Chevrolet"},
		{Code: "25", Name: "Honda"},
		{Code: "56", Name: "Toyota"},
		{Code: "59", Name: "VW - VolksWagen"},
		{Code: "13", Name: "Citroën"},
	}
	catalogModels = map[string][]catalogOption{
		"21": {{Code: "437", Name: "Uno Mille 1.0"}, {Code: "5607", Name: "Palio 1.0"}, {Code: "8590", Name: "Toro Volcano 2.0"}},
		"22": {{Code: "3303", Name: "Ka 1.0"}, {Code: "642", Name: "Maverick 2.0 EcoBoost"}},
		"23": {{Code: "4856", Name: "Opala Diplomata 4.1"}, {Code: "5496", Name: "Onix 1.0 Turbo"}},
		"25": {{Code: "4950", Name: "Civic Si 2.0"}, {Code: "5411", Name: "Civic Type R 2.0 Turbo"}, {Code: "7680", Name: "Fit EX 1.5"}},
		"56": {{Code: "6123", Name: "Corolla GR-S 2.0"}, {Code: "2020", Name: "Supra 3.0"}},
		"59": {{Code: "1", Name: "Gol GTI 2.0"}, {Code: "2", Name: "Golf GTI 2.0 TSI"}, {Code: "3", Name: "Fusca 1300"}},
		"13": {{Code: "7012", Name: "C4 Cactus 1.6 THP"}},
	}
)

func (s *Server) listBrands(c *gin.Context) {
	c.JSON(http.StatusOK, catalogBrands)
}

func (s *Server) listModels(c *gin.Context) {
	models, ok := catalogModels[c.Param("code")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "brand not found"})
		return
	}
	c.JSON(http.StatusOK, models)
}
