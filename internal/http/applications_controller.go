package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/applications"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
)

// ApplicationsController handles membership applications. Submitting one is
// public; reviewing is staff-only. Approval provisions a member account with
// a temporary password.
type ApplicationsController struct {
	repo     *applications.Repository
	auth     *auth.Service
	notifier *notifier.Notifier
}

func NewApplicationsController(repo *applications.Repository, authService *auth.Service, n *notifier.Notifier) *ApplicationsController {
	return &ApplicationsController{repo: repo, auth: authService, notifier: n}
}

type applicationRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// Submit files a new PENDING membership application.
func (a *ApplicationsController) Submit(c *gin.Context) {
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and email are required")
		return
	}

	application := &entities.MembershipApplication{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	}
	if err := a.repo.CreateApplication(application); err != nil {
		respondInternalError(c, err, "create application")
		return
	}
	respondCreated(c, application)
}

// List returns applications, optionally filtered by status.
func (a *ApplicationsController) List(c *gin.Context) {
	result, err := a.repo.ListApplications(entities.ApplicationStatus(c.Query("status")))
	if err != nil {
		respondInternalError(c, err, "list applications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": result, "count": len(result)})
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// Approve accepts a PENDING application, provisions a MEMBER account and
// emails the applicant.
func (a *ApplicationsController) Approve(c *gin.Context) {
	a.review(c, entities.ApplicationStatusApproved)
}

// Reject declines a PENDING application.
func (a *ApplicationsController) Reject(c *gin.Context) {
	a.review(c, entities.ApplicationStatusRejected)
}

func (a *ApplicationsController) review(c *gin.Context, decision entities.ApplicationStatus) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// The reviewer notes body is optional.
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBadRequest(c, "invalid request body")
		return
	}

	application, err := a.repo.Review(id, decision, req.Notes)
	if err != nil {
		respondDomainError(c, err, "application")
		return
	}

	if decision == entities.ApplicationStatusApproved {
		a.provisionMember(c.Request.Context(), application)
	} else {
		a.notifier.Notify(c.Request.Context(), notifier.Event{
			Kind:      notifier.KindApplicationRejected,
			Recipient: application.Email,
			Payload:   map[string]string{"Name": application.Name, "Notes": req.Notes},
		})
	}

	c.JSON(http.StatusOK, application)
}

// provisionMember creates the member account for an approved application.
// The application stays APPROVED even if the account already exists, so a
// re-submitted email does not block the review.
func (a *ApplicationsController) provisionMember(ctx context.Context, application *entities.MembershipApplication) {
	password, err := auth.GenerateTemporaryPassword()
	if err != nil {
		log.Printf("Failed to generate password for application %d: %v", application.ID, err)
		return
	}

	_, err = a.auth.CreateUser(application.Name, application.Email, password, entities.UserRoleMember)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			log.Printf("Application %d approved but account %s already exists", application.ID, application.Email)
		} else {
			log.Printf("Failed to create account for application %d: %v", application.ID, err)
			return
		}
	}

	a.notifier.Notify(ctx, notifier.Event{
		Kind:      notifier.KindApplicationApproved,
		Recipient: application.Email,
		Payload:   map[string]string{"Name": application.Name},
	})
}
