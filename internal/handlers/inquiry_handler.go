package handlers

import (
	"net/http"

	"courier_api/internal/models"
	"courier_api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InquiryHandler struct {
	inquiryService services.InquiryService
	logger         *zap.Logger
}

func NewInquiryHandler(inquiryService services.InquiryService, logger *zap.Logger) *InquiryHandler {
	return &InquiryHandler{
		inquiryService: inquiryService,
		logger:         logger,
	}
}

// CreateInquiry is the public submission endpoint.
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	var input services.CreateInquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequest})
		return
	}

	inquiry, err := h.inquiryService.CreateInquiry(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, "Inquiry submitted successfully", inquiry)
}

func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	filter := services.InquiryListFilter{
		Status: models.InquiryStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	inquiries, pagination, err := h.inquiryService.ListInquiries(c.Request.Context(), filter, pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, "Inquiries fetched successfully", inquiries, pagination)
}

func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	inquiry, err := h.inquiryService.GetInquiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Inquiry fetched successfully", inquiry)
}

func (h *InquiryHandler) UpdateInquiry(c *gin.Context) {
	var input services.UpdateInquiryInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequest})
		return
	}

	inquiry, err := h.inquiryService.UpdateInquiry(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Inquiry updated successfully", inquiry)
}

func (h *InquiryHandler) ConfirmInquiry(c *gin.Context) {
	inquiry, err := h.inquiryService.ConfirmInquiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Inquiry confirmed successfully", inquiry)
}

func (h *InquiryHandler) CancelInquiry(c *gin.Context) {
	inquiry, err := h.inquiryService.CancelInquiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Inquiry cancelled successfully", inquiry)
}

func (h *InquiryHandler) ApproveInquiry(c *gin.Context) {
	inquiry, err := h.inquiryService.ApproveInquiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Inquiry approved successfully", inquiry)
}

// ListConfirmedWithoutBill feeds the billing picker with {id, senderName} rows.
func (h *InquiryHandler) ListConfirmedWithoutBill(c *gin.Context) {
	summaries, err := h.inquiryService.ListConfirmedWithoutBill(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Confirmed inquiries without bills fetched successfully", summaries)
}

func (h *InquiryHandler) ListAdminInquiries(c *gin.Context) {
	status := models.InquiryStatus(c.Query("status"))

	inquiries, pagination, err := h.inquiryService.ListForAdmin(c.Request.Context(), status, pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, "Inquiries fetched successfully", inquiries, pagination)
}

func (h *InquiryHandler) UpdateConfirmedData(c *gin.Context) {
	var input services.ConfirmedDataInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequest})
		return
	}

	inquiry, err := h.inquiryService.UpdateConfirmedData(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Inquiry updated successfully", inquiry)
}
