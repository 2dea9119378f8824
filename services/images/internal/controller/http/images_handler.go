package http

import (
	"net/http"
	"strings"

	"postpilot/pkg/logger"
	"postpilot/services/images/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ImagesHandler struct {
	imagesUseCase usecase.ImagesUseCase
	configured    bool
	logger        *logger.Logger
}

func NewImagesHandler(imagesUseCase usecase.ImagesUseCase, configured bool, logger *logger.Logger) *ImagesHandler {
	return &ImagesHandler{
		imagesUseCase: imagesUseCase,
		configured:    configured,
		logger:        logger,
	}
}

// SearchImage godoc
// @Summary      Search for a stock image
// @Description  Search Unsplash for an image matching the query. Returns a placeholder URL when nothing matches.
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        query query string true "Search query"
// @Success      200  {object}  unsplash.Image
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /images/search [get]
func (h *ImagesHandler) SearchImage(c *gin.Context) {
	if !h.configured {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "images service not configured"})
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	image, err := h.imagesUseCase.SearchImage(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("Failed to search image: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to search image"})
		return
	}

	c.JSON(http.StatusOK, image)
}
