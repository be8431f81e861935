package handlers

import (
	"net/http"

	"courier_api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	Inquiries *InquiryHandler
	Bills     *BillHandler
	Auth      *AuthHandler
	Origins   []string
	Logger    *zap.Logger
}

// Engine builds the gin engine with every route registered.
func (r Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(r.Logger),
		middleware.RequestLogger(r.Logger),
		middleware.SecurityHeaders(),
		middleware.CORS(r.Origins),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Courier API running"})
	})

	// Auth
	router.POST("/login", r.Auth.Login)
	router.POST("/logout", r.Auth.Logout)

	// Public inquiry submission
	router.POST("/inquiries", r.Inquiries.CreateInquiry)

	protected := router.Group("/", r.Auth.RequireAuth())
	{
		protected.GET("/verify-token", r.Auth.VerifyToken)

		protected.GET("/inquiries", r.Inquiries.ListInquiries)
		protected.GET("/inquiries/confirmed/no-bill", r.Inquiries.ListConfirmedWithoutBill)
		protected.GET("/inquiries/:id", r.Inquiries.GetInquiry)
		protected.PATCH("/inquiries/:id", r.Inquiries.UpdateInquiry)
		protected.POST("/inquiries/:id/confirm", r.Inquiries.ConfirmInquiry)
		protected.POST("/inquiries/:id/cancel", r.Inquiries.CancelInquiry)
		protected.PATCH("/inquiries/:id/update-confirmed-data", r.Inquiries.UpdateConfirmedData)

		protected.GET("/admin/inquiries", r.Inquiries.ListAdminInquiries)
		protected.PATCH("/admin/inquiries/:id/approve", r.Inquiries.ApproveInquiry)

		protected.GET("/bills", r.Bills.ListBills)
		protected.POST("/bills/:inquiryId", r.Bills.CreateBill)
		protected.GET("/bills/bill/:id", r.Bills.GetBill)
		protected.PATCH("/bills/bill/:id", r.Bills.UpdateBill)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return router
}
