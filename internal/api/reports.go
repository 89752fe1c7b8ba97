package api

import (
	"bytes"
	"fmt"
	"net/http"

	"comanda/internal/reporting"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Report handlers

// LineItemReport projects line items; ?format=json|csv|xlsx
func (s *Server) LineItemReport(c *gin.Context) {
	r, ok := s.dateRange(c)
	if !ok {
		return
	}
	rows := s.service.LineItemReport(r)
	s.writeReport(c, "line-items", rows, reporting.LineItemTable(rows))
}

// OrderReport projects one row per order; ?format=json|csv|xlsx
func (s *Server) OrderReport(c *gin.Context) {
	r, ok := s.dateRange(c)
	if !ok {
		return
	}
	rows := s.service.OrderSummaryReport(r)
	s.writeReport(c, "orders", rows, reporting.OrderSummaryTable(rows))
}

// SalesReport sums totals per channel and per state
func (s *Server) SalesReport(c *gin.Context) {
	r, ok := s.dateRange(c)
	if !ok {
		return
	}
	resolved, byChannel, byState := s.service.Sales(r)
	c.JSON(http.StatusOK, gin.H{
		"range":      resolved,
		"by_channel": byChannel,
		"by_state":   byState,
	})
}

func (s *Server) writeReport(c *gin.Context, name string, rows interface{}, table reporting.Table) {
	var buf bytes.Buffer
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, rows)
	case "csv":
		if err := reporting.WriteCSV(&buf, table); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		if err := reporting.WriteXLSX(&buf, table); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		badRequest(c, fmt.Errorf("unknown format %q", format))
	}
}

// dateRange reads ?from= ?to= and writes a 400 when either is malformed
func (s *Server) dateRange(c *gin.Context) (reporting.DateRange, bool) {
	r, err := reporting.ParseDateRange(c.Query("from"), c.Query("to"), s.location)
	if err != nil {
		badRequest(c, err)
		return reporting.DateRange{}, false
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		badRequest(c, fmt.Errorf("to %s is before from %s", r.To.Format(reporting.DateLayout), r.From.Format(reporting.DateLayout)))
		return reporting.DateRange{}, false
	}
	return r, true
}
