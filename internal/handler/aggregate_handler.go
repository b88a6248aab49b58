package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jengzang/sdr-records-go/internal/aggregate"
	"github.com/jengzang/sdr-records-go/internal/models"
	"github.com/jengzang/sdr-records-go/internal/service"
	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/pkg/response"
)

// AggregateHandler handles HTTP requests for location aggregates
type AggregateHandler struct {
	measurementService *service.MeasurementService
}

// NewAggregateHandler creates a new aggregate handler
func NewAggregateHandler(measurementService *service.MeasurementService) *AggregateHandler {
	return &AggregateHandler{
		measurementService: measurementService,
	}
}

// AggregateView is a LocationAggregate with the S2 cell of its representative
type AggregateView struct {
	aggregate.LocationAggregate
	CellToken string `json:"cellToken"`
}

// GetAggregates handles GET /api/v1/aggregates
func (h *AggregateHandler) GetAggregates(c *gin.Context) {
	aggs, ok := h.aggregate(c)
	if !ok {
		return
	}

	views := make([]AggregateView, 0, len(aggs))
	for _, a := range aggs {
		views = append(views, AggregateView{
			LocationAggregate: a,
			CellToken:         a.RepresentativeLocation.CellToken(spatial.DefaultCellLevel),
		})
	}

	response.Success(c, gin.H{
		"count":      len(views),
		"aggregates": views,
	})
}

// GetAggregateChart handles GET /api/v1/aggregates/chart
func (h *AggregateHandler) GetAggregateChart(c *gin.Context) {
	aggs, ok := h.aggregate(c)
	if !ok {
		return
	}

	x := make([]string, 0, len(aggs))
	counts := make([]opts.BarData, 0, len(aggs))
	power := make([]opts.BarData, 0, len(aggs))
	for _, a := range aggs {
		x = append(x, a.RepresentativeLocation.String())
		counts = append(counts, opts.BarData{Value: a.MeasurementCount})
		power = append(power, opts.BarData{Value: a.Power.Avg})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "SDR Location Aggregates", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Measurements per location", Subtitle: fmt.Sprintf("clusters=%d", len(aggs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("measurements", counts,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("avg power (dBm)", power)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		c.Error(err)
		response.InternalError(c, "Failed to render chart")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *AggregateHandler) aggregate(c *gin.Context) ([]aggregate.LocationAggregate, bool) {
	var filter models.MeasurementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return nil, false
	}

	aggs, err := h.measurementService.Aggregate(filter)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return aggs, true
}
