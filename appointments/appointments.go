package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/models"
	"medira/mq"
	"medira/schedule"
	"medira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// projectReservations flattens the embedded reservations of matching cells
// into patient/doctor-facing appointment views.
func projectReservations(cells []models.SlotCell, keep func(models.Reservation) bool) []models.AppointmentView {
	var out []models.AppointmentView
	for _, c := range cells {
		for _, res := range c.Reservations {
			if !keep(res) {
				continue
			}
			out = append(out, models.AppointmentView{
				SlotID:    c.SlotID,
				Day:       c.Day,
				Band:      c.Band,
				DoctorID:  c.DoctorID,
				ResID:     res.ResID,
				Date:      res.Date,
				PatientID: res.PatientID,
				Status:    res.Status,
				Reason:    res.Reason,
				CreatedAt: res.CreatedAt,
			})
		}
	}
	return out
}

func findCells(ctx context.Context, filter bson.M) ([]models.SlotCell, error) {
	cur, err := db.SlotCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cells []models.SlotCell
	for cur.Next(ctx) {
		var c models.SlotCell
		if err := cur.Decode(&c); err != nil {
			continue
		}
		cells = append(cells, c)
	}
	return cells, cur.Err()
}

// GET /api/appointments/mine — all reservations of the calling patient.
func GetMyAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	patientID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cells, err := findCells(ctx, bson.M{"reservations.patientid": patientID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	views := projectReservations(cells, func(res models.Reservation) bool {
		return res.PatientID == patientID
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"appointments": views})
}

// GET /api/appointments/doctor — reservations on the calling doctor's cells.
func GetDoctorAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	doctorID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cells, err := findCells(ctx, bson.M{"doctorid": doctorID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	status := r.URL.Query().Get("status")
	views := projectReservations(cells, func(res models.Reservation) bool {
		return status == "" || res.Status == status
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"appointments": views})
}

// POST /api/appointments/:slotid/cancel — a patient cancels their own booking.
func CancelMyAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	patientID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cell, err := schedule.ReleaseOwnedDate(ctx, ps.ByName("slotid"), body.Date, patientID, models.ResCancelled)
	if err != nil {
		utils.RespondWithError(w, schedule.HTTPStatus(err), err.Error())
		return
	}

	mq.Emit("appointment-cancelled", patientID, ps.ByName("slotid"), body.Date)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": cell})
}

// POST /api/appointments/:slotid/close — the slot's doctor settles a past
// visit as completed or no-show.
func CloseAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Date    string `json:"date"`
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Outcome != models.ResCompleted && body.Outcome != models.ResNoShow {
		utils.RespondWithError(w, http.StatusBadRequest, "outcome must be completed or no-show")
		return
	}

	doctorID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cell, err := schedule.GetCell(ctx, ps.ByName("slotid"))
	if err != nil {
		utils.RespondWithError(w, schedule.HTTPStatus(err), err.Error())
		return
	}
	if cell.DoctorID != doctorID && !middleware.HasRole(r.Context(), models.RoleAdmin) {
		utils.RespondWithError(w, http.StatusForbidden, "not your slot")
		return
	}

	cell, err = schedule.ReleaseDate(ctx, ps.ByName("slotid"), body.Date, body.Outcome)
	if err != nil {
		utils.RespondWithError(w, schedule.HTTPStatus(err), err.Error())
		return
	}

	mq.Emit("appointment-closed", doctorID, ps.ByName("slotid"), body.Date+":"+body.Outcome)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": cell})
}
