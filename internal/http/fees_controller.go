package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	feesrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/fees"
)

// FeesController exposes fee transactions and the admin-managed fee
// structures. Members see their own transactions; assessment, payment
// approval and waiving are staff operations.
type FeesController struct {
	repo   *feesrepo.Repository
	engine *fees.Engine
}

func NewFeesController(repo *feesrepo.Repository, engine *fees.Engine) *FeesController {
	return &FeesController{repo: repo, engine: engine}
}

type assessFeeRequest struct {
	UserID        uint             `json:"user_id" binding:"required"`
	FeeType       entities.FeeType `json:"fee_type" binding:"required"`
	Reason        string           `json:"reason"`
	ReservationID *uint            `json:"reservation_id"`
}

// Assess creates a PENDING fee transaction priced from the active fee
// structure for the requested type.
func (f *FeesController) Assess(c *gin.Context) {
	var req assessFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "user_id and fee_type are required")
		return
	}
	if !entities.ValidFeeType(req.FeeType) {
		respondBadRequest(c, "unknown fee_type")
		return
	}

	transaction, err := f.engine.Assess(c.Request.Context(), req.UserID, req.FeeType, req.Reason, req.ReservationID)
	if err != nil {
		respondDomainError(c, err, "fee")
		return
	}
	respondCreated(c, transaction)
}

// List returns fee transactions with their effective status. Members see
// only their own; staff may filter by user_id and status.
func (f *FeesController) List(c *gin.Context) {
	userID := GetUserID(c)
	if GetUserRole(c).IsStaff() {
		id, err := parseOptionalUintQuery(c, "user_id")
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		userID = id
	}

	transactions, err := f.repo.ListTransactions(userID, entities.FeeStatus(c.Query("status")))
	if err != nil {
		respondInternalError(c, err, "list fees")
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, gin.H{"transaction": t, "effective_status": t.EffectiveStatus(now)})
	}
	c.JSON(http.StatusOK, gin.H{"fees": items, "count": len(items)})
}

// Get returns a single fee transaction. Members may only read their own.
func (f *FeesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	transaction, err := f.repo.GetTransactionByID(id)
	if err != nil {
		respondDomainError(c, err, "fee")
		return
	}
	if !GetUserRole(c).IsStaff() && transaction.UserID != GetUserID(c) {
		respondNotFound(c, "fee")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction":      transaction,
		"effective_status": transaction.EffectiveStatus(time.Now()),
	})
}

// ApprovePayment records payment of a PENDING or OVERDUE fee.
func (f *FeesController) ApprovePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	transaction, err := f.engine.MarkPaid(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "fee")
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// Waive forgives a PENDING or OVERDUE fee.
func (f *FeesController) Waive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	transaction, err := f.engine.Waive(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "fee")
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// --- Fee structures (admin) ---

type feeStructureRequest struct {
	Type        entities.FeeType `json:"type" binding:"required"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	IsActive    bool             `json:"is_active"`
}

// ListStructures returns all fee structures, active and inactive.
func (f *FeesController) ListStructures(c *gin.Context) {
	structures, err := f.repo.ListStructures()
	if err != nil {
		respondInternalError(c, err, "list fee structures")
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_structures": structures, "count": len(structures)})
}

// CreateStructure adds a fee structure. An active structure deactivates any
// previously active one of the same type.
func (f *FeesController) CreateStructure(c *gin.Context) {
	var req feeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "type is required")
		return
	}
	if !entities.ValidFeeType(req.Type) {
		respondBadRequest(c, "unknown fee type")
		return
	}
	if req.Amount.IsNegative() {
		respondBadRequest(c, "amount must not be negative")
		return
	}

	structure := &entities.FeeStructure{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if err := f.repo.CreateStructure(structure); err != nil {
		respondInternalError(c, err, "create fee structure")
		return
	}
	respondCreated(c, structure)
}

// UpdateStructure changes the price, description or active flag of a fee
// structure.
func (f *FeesController) UpdateStructure(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req feeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "type is required")
		return
	}
	if req.Amount.IsNegative() {
		respondBadRequest(c, "amount must not be negative")
		return
	}

	structure, err := f.repo.UpdateStructure(id, req.Amount, req.Description, req.IsActive)
	if err != nil {
		respondDomainError(c, err, "fee structure")
		return
	}
	c.JSON(http.StatusOK, structure)
}
