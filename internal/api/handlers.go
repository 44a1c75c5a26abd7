package api

import (
	"countrystats/internal/engine"
	"countrystats/internal/models"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	mu   sync.RWMutex
	data *engine.Dataset
	etag string
}

func NewHandler(data *engine.Dataset) *Handler {
	h := &Handler{}
	if data != nil {
		h.SetData(data)
	}
	return h
}

// SetData swaps in a freshly loaded dataset.
func (h *Handler) SetData(data *engine.Dataset) {
	etag := fmt.Sprintf(`"%016x"`, data.Fingerprint())
	h.mu.Lock()
	h.data = data
	h.etag = etag
	h.mu.Unlock()
}

// HasData reports whether a dataset has been loaded.
func (h *Handler) HasData() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data != nil
}

func (h *Handler) snapshot() (*engine.Dataset, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data, h.etag
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api", h.requireData)
	api.GET("/subregions", h.GetSubRegions)
	api.GET("/subregions/:sub_region/countries", h.GetCountries)
	api.GET("/subregions/:sub_region/species", h.GetSpeciesStats)
	api.GET("/countries/:country", h.GetCountry)
	api.GET("/countries/:country/population", h.GetPopulationStats)
	api.GET("/summary", h.GetSummary)
}

// --- MIDDLEWARE ---

// requireData answers 503 until the first load completes and handles
// conditional requests against the dataset fingerprint.
func (h *Handler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, etag := h.snapshot()
		if data == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
		}
		c.Set("dataset", data)
		c.Response().Header().Set("ETag", etag)
		if match := c.Request().Header.Get("If-None-Match"); match != "" && match == etag {
			return c.NoContent(http.StatusNotModified)
		}
		return next(c)
	}
}

func dataset(c echo.Context) *engine.Dataset {
	return c.Get("dataset").(*engine.Dataset)
}

// param returns a decoded path parameter. The router matches on RawPath
// when it is set, leaving params escaped; otherwise they are already decoded.
func param(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) GetSubRegions(c echo.Context) error {
	return c.JSON(http.StatusOK, engine.SubRegions(dataset(c)))
}

// countries of a sub-region, 404 if there are none
func (h *Handler) GetCountries(c echo.Context) error {
	sub := param(c, "sub_region")
	countries := engine.CountriesIn(dataset(c), sub)
	if len(countries) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No countries found for the specified sub-region.")
	}
	return c.JSON(http.StatusOK, countries)
}

// species stats of a sub-region; an unknown sub-region is an empty page
func (h *Handler) GetSpeciesStats(c echo.Context) error {
	stats := engine.SpeciesStats(dataset(c), param(c, "sub_region"))
	total := len(stats)
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data":   []models.SpeciesStat{},
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   stats[offset:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetCountry(c echo.Context) error {
	country := param(c, "country")
	rec, ok := dataset(c).Get(country)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("country %q not found", country))
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetPopulationStats(c echo.Context) error {
	stats, err := engine.PopulationStats(dataset(c), param(c, "country"))
	if errors.Is(err, engine.ErrCountryNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// same flow as the interactive prompt: sub-region first, then a country
// listed in it
func (h *Handler) GetSummary(c echo.Context) error {
	ds := dataset(c)
	sub := c.QueryParam("sub_region")
	country := c.QueryParam("country")

	countries := engine.CountriesIn(ds, sub)
	if len(countries) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No countries found for the specified sub-region.")
	}
	if !slices.Contains(countries, country) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid country selection.")
	}

	summary, err := engine.Summarize(ds, sub, country)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
