package handlers

import (
	"net/http"
	"strings"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/services"
	"railbook/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/trains?from=&to=
func (h *Handlers) SearchTrains(c *gin.Context) {
	trains := h.Catalog.FindTrains(c.Query("from"), c.Query("to"))
	c.JSON(http.StatusOK, gin.H{"trains": trains, "count": len(trains)})
}

// GET /api/cities
func (h *Handlers) Cities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cities": h.Catalog.Cities()})
}

// GET /api/trains/:id
func (h *Handlers) GetTrain(c *gin.Context) {
	t, err := h.Catalog.Train(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"train": t, "classes": t.ClassNames()})
}

// GET /api/trains/:id/seats?date=&class=
// Occupancy is advisory; the authoritative check happens at confirm.
func (h *Handlers) GetSeatMap(c *gin.Context) {
	t, err := h.Catalog.Train(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	date := utils.TodayUTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, ok := utils.NormalizeDate(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "date", Msg: "date must be YYYY-MM-DD", Err: domain.ErrInvalidDate})
			return
		}
		date = d
	}
	class := strings.TrimSpace(c.Query("class"))
	if class == "" {
		class = services.DefaultClass
	}
	if _, ok := t.UnitPrice(class); !ok {
		RespondDomainError(c, domain.ValidationError{Field: "class", Msg: class + " is not sold on " + t.ID, Err: domain.ErrUnknownClass})
		return
	}

	occ, err := h.Inventory.Occupied(c.Request.Context(), models.PartitionKey{TrainID: t.ID, Date: date, Class: class})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"train_id":        t.ID,
		"date":            date,
		"class":           class,
		"seats_per_class": t.SeatsPerClass,
		"occupied":        occ,
		"available":       t.SeatsPerClass - len(occ),
	})
}
