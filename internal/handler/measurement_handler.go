package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/sdr-records-go/internal/export"
	"github.com/jengzang/sdr-records-go/internal/models"
	"github.com/jengzang/sdr-records-go/internal/service"
	"github.com/jengzang/sdr-records-go/internal/validation"
	"github.com/jengzang/sdr-records-go/pkg/response"
)

// MeasurementHandler handles HTTP requests for measurements
type MeasurementHandler struct {
	measurementService *service.MeasurementService
}

// NewMeasurementHandler creates a new measurement handler
func NewMeasurementHandler(measurementService *service.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{
		measurementService: measurementService,
	}
}

// CreateMeasurementsRequest is the body of a batch ingest
type CreateMeasurementsRequest struct {
	Measurements []models.MeasurementInput `json:"measurements" binding:"required,min=1"`
}

// CreateMeasurements handles POST /api/v1/measurements
func (h *MeasurementHandler) CreateMeasurements(c *gin.Context) {
	var req CreateMeasurementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ids, err := h.measurementService.Ingest(c.Request.Context(), req.Measurements)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, gin.H{"ids": ids})
}

// GetMeasurements handles GET /api/v1/measurements
func (h *MeasurementHandler) GetMeasurements(c *gin.Context) {
	var filter models.MeasurementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.measurementService.Query(filter)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"count":        len(result),
		"measurements": result,
	})
}

// GetMeasurementByID handles GET /api/v1/measurements/:id
func (h *MeasurementHandler) GetMeasurementByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid measurement ID")
		return
	}

	row, err := h.measurementService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, row)
}

// GetExtent handles GET /api/v1/measurements/extent
func (h *MeasurementHandler) GetExtent(c *gin.Context) {
	box, err := h.measurementService.Extent()
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"southWest":      box.SouthWest(),
		"northEast":      box.NorthEast(),
		"diagonalMeters": box.DiagonalMeters(),
	})
}

// ExportParquet handles GET /api/v1/measurements/export.parquet
func (h *MeasurementHandler) ExportParquet(c *gin.Context) {
	var filter models.MeasurementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.measurementService.Query(filter)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := export.WriteParquet(&buf, result); err != nil {
		c.Error(err)
		response.InternalError(c, "Failed to export measurements")
		return
	}

	filename := fmt.Sprintf("measurements-%s.parquet", time.Now().UTC().Format("20060102T150405Z"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.apache.parquet", buf.Bytes())
}

// writeError maps service errors onto HTTP responses
func writeError(c *gin.Context, err error) {
	var (
		ierr *service.IngestError
		verr *validation.ValidationError
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "Measurement not found")
	case errors.Is(err, service.ErrInvalidEpsilon):
		response.BadRequest(c, err.Error())
	case errors.As(err, &ierr), errors.As(err, &verr):
		response.Validation(c, err)
	default:
		c.Error(err)
		response.InternalError(c, "Internal server error")
	}
}
