package handlers

import (
	"net/http"

	"courier_api/internal/models"
	"courier_api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BillHandler struct {
	billService services.BillService
	logger      *zap.Logger
}

func NewBillHandler(billService services.BillService, logger *zap.Logger) *BillHandler {
	return &BillHandler{
		billService: billService,
		logger:      logger,
	}
}

// CreateBill bills a confirmed inquiry. The body is optional; without items the
// bill inherits the inquiry's costs.
func (h *BillHandler) CreateBill(c *gin.Context) {
	var input services.CreateBillInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequest})
		return
	}

	bill, err := h.billService.CreateForConfirmedInquiry(c.Request.Context(), c.Param("inquiryId"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, "Bill created successfully", bill)
}

func (h *BillHandler) ListBills(c *gin.Context) {
	filter := services.BillListFilter{
		BillNo:        c.Query("search"),
		InquiryStatus: models.InquiryStatus(c.Query("status")),
	}
	if billNo := c.Query("billNo"); billNo != "" {
		filter.BillNo = billNo
	}

	bills, pagination, err := h.billService.ListBills(c.Request.Context(), filter, pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, "Bills fetched successfully", bills, pagination)
}

func (h *BillHandler) GetBill(c *gin.Context) {
	bill, err := h.billService.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Bill fetched successfully", bill)
}

func (h *BillHandler) UpdateBill(c *gin.Context) {
	var input services.UpdateBillInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequest})
		return
	}

	bill, err := h.billService.UpdateBill(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Bill updated successfully", bill)
}
