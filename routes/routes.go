package routes

import (
	"net/http"

	"medira/admin"
	"medira/appointments"
	"medira/auth"
	"medira/emergency"
	"medira/invoices"
	"medira/leaves"
	"medira/middleware"
	"medira/models"
	"medira/pharmacy"
	"medira/prescriptions"
	"medira/profile"
	"medira/ratelim"
	"medira/schedule"
	"medira/triage"

	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router) {
	AddStaticRoutes(router)
	AddAuthRoutes(router)
	AddProfileRoutes(router)
	AddScheduleRoutes(router)
	AddAppointmentRoutes(router)
	AddPrescriptionRoutes(router)
	AddPharmacyRoutes(router)
	AddInvoiceRoutes(router)
	AddLeaveRoutes(router)
	AddEmergencyRoutes(router)
	AddTriageRoutes(router)
	AddAdminRoutes(router)
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/userpic/*filepath", http.Dir("static/userpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(auth.RefreshToken))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/profile", middleware.Authenticate(profile.GetMyProfile))
	router.PUT("/api/profile", middleware.Authenticate(profile.EditProfile))
	router.POST("/api/profile/avatar", ratelim.RateLimit(middleware.Authenticate(profile.UploadAvatar)))
}

func AddScheduleRoutes(router *httprouter.Router) {
	router.GET("/api/schedule/bands", schedule.GetBands)
	router.GET("/api/schedule/availability", middleware.Authenticate(schedule.GetAvailability))
	router.GET("/api/schedule/slots", middleware.RequireRoles(schedule.GetSlots, models.RoleAdmin, models.RoleStaff))

	router.POST("/api/schedule/slots", ratelim.RateLimit(middleware.RequireRoles(schedule.RequestSlot, models.RoleDoctor)))
	router.POST("/api/schedule/slots/:slotid/approve", middleware.RequireRoles(schedule.ApproveSlot, models.RoleAdmin))
	router.POST("/api/schedule/slots/:slotid/reject", middleware.RequireRoles(schedule.RejectSlot, models.RoleAdmin))
	router.POST("/api/schedule/slots/:slotid/revoke", middleware.RequireRoles(schedule.RevokeSlot, models.RoleAdmin))

	router.POST("/api/schedule/slots/:slotid/book", ratelim.RateLimit(middleware.RequireRoles(schedule.BookSlotDate, models.RolePatient)))
	router.POST("/api/schedule/slots/:slotid/release", middleware.RequireRoles(schedule.ReleaseSlotDate, models.RoleDoctor, models.RoleStaff, models.RoleAdmin))

	router.GET("/ws/schedule/slots/:slotid", schedule.HandleWS)
}

func AddAppointmentRoutes(router *httprouter.Router) {
	router.GET("/api/appointments/mine", middleware.RequireRoles(appointments.GetMyAppointments, models.RolePatient))
	router.GET("/api/appointments/doctor", middleware.RequireRoles(appointments.GetDoctorAppointments, models.RoleDoctor))
	router.POST("/api/appointments/:slotid/cancel", middleware.RequireRoles(appointments.CancelMyAppointment, models.RolePatient))
	router.POST("/api/appointments/:slotid/close", middleware.RequireRoles(appointments.CloseAppointment, models.RoleDoctor, models.RoleAdmin))
}

func AddPrescriptionRoutes(router *httprouter.Router) {
	router.POST("/api/prescriptions", middleware.RequireRoles(prescriptions.CreatePrescription, models.RoleDoctor))
	router.GET("/api/prescriptions/mine", middleware.RequireRoles(prescriptions.GetMyPrescriptions, models.RolePatient))
	router.GET("/api/prescriptions/patient/:patientid", middleware.RequireRoles(prescriptions.GetPatientPrescriptions, models.RoleDoctor, models.RolePharmacist, models.RoleAdmin))
	router.POST("/api/prescriptions/:presid/dispense", middleware.RequireRoles(prescriptions.DispensePrescription, models.RolePharmacist))
	router.POST("/api/prescriptions/:presid/cancel", middleware.RequireRoles(prescriptions.CancelPrescription, models.RoleDoctor, models.RoleAdmin))
}

func AddPharmacyRoutes(router *httprouter.Router) {
	router.POST("/api/pharmacy/medicines", middleware.RequireRoles(pharmacy.CreateMedicine, models.RolePharmacist, models.RoleAdmin))
	router.GET("/api/pharmacy/medicines", middleware.Authenticate(pharmacy.ListMedicines))
	router.GET("/api/pharmacy/medicines/:medid", middleware.Authenticate(pharmacy.GetMedicine))
	router.PUT("/api/pharmacy/medicines/:medid", middleware.RequireRoles(pharmacy.EditMedicine, models.RolePharmacist, models.RoleAdmin))
	router.POST("/api/pharmacy/medicines/:medid/restock", middleware.RequireRoles(pharmacy.RestockMedicine, models.RolePharmacist, models.RoleAdmin))
}

func AddInvoiceRoutes(router *httprouter.Router) {
	router.POST("/api/invoices", middleware.RequireRoles(invoices.CreateInvoice, models.RoleStaff, models.RoleAdmin))
	router.GET("/api/invoices", middleware.RequireRoles(invoices.ListInvoices, models.RoleStaff, models.RoleAdmin))
	router.GET("/api/invoices/mine", middleware.RequireRoles(invoices.GetMyInvoices, models.RolePatient))
	router.GET("/api/invoices/print/:invid", ratelim.RateLimit(middleware.Authenticate(invoices.PrintInvoice)))
	router.POST("/api/invoices/:invid/pay", middleware.RequireRoles(invoices.MarkInvoicePaid, models.RoleStaff, models.RoleAdmin))
	router.POST("/api/invoices/:invid/void", middleware.RequireRoles(invoices.VoidInvoice, models.RoleAdmin))
}

func AddLeaveRoutes(router *httprouter.Router) {
	router.POST("/api/leaves", middleware.RequireRoles(leaves.RequestLeave, models.RoleDoctor, models.RoleStaff, models.RolePharmacist))
	router.GET("/api/leaves/mine", middleware.Authenticate(leaves.GetMyLeaves))
	router.GET("/api/leaves", middleware.RequireRoles(leaves.ListLeaves, models.RoleAdmin))
	router.POST("/api/leaves/:leaveid/approve", middleware.RequireRoles(leaves.ApproveLeave, models.RoleAdmin))
	router.POST("/api/leaves/:leaveid/reject", middleware.RequireRoles(leaves.RejectLeave, models.RoleAdmin))
}

func AddEmergencyRoutes(router *httprouter.Router) {
	router.POST("/api/emergency/grants", middleware.RequireRoles(emergency.CreateGrant, models.RoleAdmin))
	router.GET("/api/emergency/patients/:patientid/record", middleware.RequireRoles(emergency.AccessPatientRecord, models.RoleDoctor, models.RoleStaff))
	router.GET("/api/emergency/audit", middleware.RequireRoles(emergency.GetAccessLog, models.RoleAdmin))
}

func AddTriageRoutes(router *httprouter.Router) {
	router.GET("/api/triage", ratelim.RateLimit(triage.Lookup))
	router.GET("/api/triage/symptoms", triage.ListSymptoms)
}

func AddAdminRoutes(router *httprouter.Router) {
	router.GET("/api/admin/users", middleware.RequireRoles(admin.ListUsers, models.RoleAdmin))
	router.PUT("/api/admin/users/:userid/roles", middleware.RequireRoles(admin.SetUserRoles, models.RoleAdmin))
	router.POST("/api/admin/users/:userid/activate", middleware.RequireRoles(admin.ActivateUser, models.RoleAdmin))
	router.POST("/api/admin/users/:userid/deactivate", middleware.RequireRoles(admin.DeactivateUser, models.RoleAdmin))
}
