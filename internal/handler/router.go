package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/middleware"
	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/repository"
	"github.com/tafita2023/inata-api/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Invitation *InvitationHandler
	Class      *ClassHandler
	Subject    *SubjectHandler
	Room       *RoomHandler
	Schedule   *ScheduleHandler
	Grade      *GradeHandler
	Promotion  *PromotionHandler
	Fee        *FeeHandler
	Payment    *PaymentHandler
	Absence    *AbsenceHandler
	Transcript *TranscriptHandler
	Salary     *SalaryHandler
	Event      *EventHandler
	Assignment *AssignmentHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts all routes on the engine. Health and metrics stay at
// the root; the API itself lives under prefix. Authentication and role checks
// happen here so handlers stay free of routing concerns.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authSvc *service.AuthService, users *repository.UserRepository) {
	admin := string(models.RoleAdmin)
	teacher := string(models.RoleTeacher)
	student := string(models.RoleStudent)

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.GET("/register/:token", h.Invitation.Inspect)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	// The payment provider calls this endpoint directly; authentication is
	// the signature header, not a JWT.
	api.POST("/payments/webhook", h.Payment.Webhook)

	secured := api.Group("", middleware.JWT(authSvc))
	{
		secured.POST("/auth/logout", h.Auth.Logout)
		secured.PUT("/auth/password", h.Auth.ChangePassword)

		secured.GET("/users", middleware.RBAC(admin), h.User.List)
		secured.GET("/users/me", h.User.Me)
		secured.GET("/users/:id", middleware.RBAC(admin, "SELF"), h.User.Get)
		secured.POST("/users", middleware.RBAC(admin), middleware.Audit(users, "create", "user"), h.User.Create)
		secured.PUT("/users/:id", middleware.RBAC(admin), middleware.Audit(users, "update", "user"), h.User.Update)
		secured.DELETE("/users/:id", middleware.RBAC(admin), middleware.Audit(users, "delete", "user"), h.User.Delete)
		secured.POST("/users/:id/photo", middleware.RBAC(admin, "SELF"), h.User.UploadPhoto)

		secured.POST("/invitations", middleware.RBAC(admin), middleware.Audit(users, "create", "invitation"), h.Invitation.Create)
		secured.GET("/invitations", middleware.RBAC(admin), h.Invitation.List)

		secured.GET("/classes", h.Class.List)
		secured.GET("/classes/fees", middleware.RBAC(admin), h.Class.ListFees)
		secured.GET("/classes/:id", h.Class.Get)
		secured.POST("/classes", middleware.RBAC(admin), h.Class.Create)
		secured.PUT("/classes/:id", middleware.RBAC(admin), h.Class.Update)
		secured.DELETE("/classes/:id", middleware.RBAC(admin), h.Class.Delete)
		secured.PUT("/classes/:id/fee", middleware.RBAC(admin), middleware.Audit(users, "update", "class_fee"), h.Class.SetFee)

		secured.GET("/classes/:id/schedule", h.Schedule.Weekly)
		secured.PUT("/classes/:id/schedule", middleware.RBAC(admin), h.Schedule.PlaceSlot)
		secured.GET("/schedule/mine", middleware.RBAC(student), h.Schedule.Mine)
		secured.DELETE("/schedule/:slotId", middleware.RBAC(admin), h.Schedule.RemoveSlot)

		secured.GET("/subjects", middleware.RBAC(admin, teacher), h.Subject.List)
		secured.GET("/subjects/mine", middleware.RBAC(teacher, student), h.Subject.Mine)
		secured.GET("/subjects/:id", h.Subject.Get)
		secured.POST("/subjects", middleware.RBAC(admin), h.Subject.Create)
		secured.PUT("/subjects/:id", middleware.RBAC(admin), h.Subject.Update)
		secured.DELETE("/subjects/:id", middleware.RBAC(admin), h.Subject.Delete)

		secured.GET("/units", h.Subject.ListUnits)
		secured.POST("/units", middleware.RBAC(admin), h.Subject.CreateUnit)
		secured.DELETE("/units/:id", middleware.RBAC(admin), h.Subject.DeleteUnit)

		secured.GET("/rooms", h.Room.List)
		secured.POST("/rooms", middleware.RBAC(admin), h.Room.Create)
		secured.PUT("/rooms/:id", middleware.RBAC(admin), h.Room.Update)
		secured.DELETE("/rooms/:id", middleware.RBAC(admin), h.Room.Delete)

		secured.GET("/evaluations", middleware.RBAC(admin, teacher), h.Grade.ListEvaluations)
		secured.POST("/evaluations", middleware.RBAC(admin, teacher), h.Grade.CreateEvaluation)
		secured.PUT("/evaluations/:id", middleware.RBAC(admin, teacher), h.Grade.UpdateEvaluation)
		secured.DELETE("/evaluations/:id", middleware.RBAC(admin, teacher), h.Grade.DeleteEvaluation)
		secured.GET("/evaluations/:id/grades", middleware.RBAC(admin, teacher), h.Grade.ListByEvaluation)

		secured.GET("/grades", middleware.RBAC(admin), h.Grade.ListAll)
		secured.GET("/grades/mine", middleware.RBAC(student), h.Grade.Mine)
		secured.POST("/grades", middleware.RBAC(admin, teacher), h.Grade.Record)
		secured.DELETE("/grades/:id", middleware.RBAC(admin, teacher), h.Grade.Delete)

		secured.POST("/promotion", middleware.RBAC(admin), middleware.Audit(users, "execute", "promotion"), h.Promotion.PromoteAll)

		secured.GET("/fees", middleware.RBAC(admin), h.Fee.Ledger)
		secured.GET("/fees/mine", middleware.RBAC(student), h.Fee.Mine)
		secured.POST("/fees/payments", middleware.RBAC(admin), middleware.Audit(users, "create", "manual_payment"), h.Fee.RecordManualPayment)

		secured.POST("/payments/checkout", middleware.RBAC(student), h.Payment.Checkout)
		secured.GET("/payments/mine", middleware.RBAC(student), h.Payment.Mine)
		secured.GET("/payments/session/:sessionId", middleware.RBAC(admin, student), h.Payment.Status)
		secured.GET("/payments", middleware.RBAC(admin), h.Payment.ListAll)

		secured.GET("/absences", h.Absence.List)
		secured.POST("/absences", middleware.RBAC(admin, teacher), h.Absence.Mark)
		secured.PUT("/absences/:id/justify", middleware.RBAC(admin, teacher), h.Absence.Justify)
		secured.DELETE("/absences/:id", middleware.RBAC(admin, teacher), h.Absence.Delete)

		secured.GET("/transcripts/mine", middleware.RBAC(student), h.Transcript.Mine)
		secured.GET("/transcripts/:id", middleware.RBAC(admin), h.Transcript.ByStudent)

		secured.GET("/salaries/rates", middleware.RBAC(admin, teacher), h.Salary.ListRates)
		secured.PUT("/salaries/rates", middleware.RBAC(admin), h.Salary.SetRate)
		secured.DELETE("/salaries/rates/:id", middleware.RBAC(admin), h.Salary.DeleteRate)
		secured.POST("/salaries/payments", middleware.RBAC(admin), middleware.Audit(users, "create", "salary_payment"), h.Salary.RecordPayment)
		secured.GET("/salaries/payments", middleware.RBAC(admin, teacher), h.Salary.ListPayments)

		secured.GET("/events", h.Event.List)
		secured.POST("/events", middleware.RBAC(admin), h.Event.Create)
		secured.PUT("/events/:id", middleware.RBAC(admin), h.Event.Update)
		secured.DELETE("/events/:id", middleware.RBAC(admin), h.Event.Delete)

		secured.GET("/assignments", h.Assignment.List)
		secured.POST("/assignments", middleware.RBAC(admin, teacher), h.Assignment.Publish)
		secured.GET("/assignments/:id/file", h.Assignment.Download)
		secured.DELETE("/assignments/:id", middleware.RBAC(admin, teacher), h.Assignment.Delete)
	}
}
