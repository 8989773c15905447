package schedule

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"medira/middleware"
	"medira/mq"
	"medira/utils"

	"github.com/julienschmidt/httprouter"
)

func writeErr(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("schedule: %v", err)
		utils.RespondWithError(w, status, "internal error")
		return
	}
	utils.RespondWithError(w, status, err.Error())
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// POST /api/schedule/slots  (doctor)
func RequestSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Day   int    `json:"day"`
		Band  string `json:"band"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	doctorID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := opCtx()
	defer cancel()

	cell, err := RequestAssignment(ctx, body.Day, body.Band, doctorID, body.Notes)
	if err != nil {
		writeErr(w, err)
		return
	}

	mq.Emit("slot-requested", doctorID, cell.SlotID, cell.Band)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"slot": cell})
}

// POST /api/schedule/slots/:slotid/approve  (admin)
func ApproveSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	approverID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := opCtx()
	defer cancel()

	cell, err := Approve(ctx, ps.ByName("slotid"), approverID)
	if err != nil {
		writeErr(w, err)
		return
	}

	mq.Emit("slot-approved", approverID, cell.SlotID, cell.DoctorID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": cell})
}

// POST /api/schedule/slots/:slotid/reject  (admin)
func RejectSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	cell, err := Reject(ctx, ps.ByName("slotid"), body.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}

	mq.Emit("slot-rejected", middleware.UserIDFromContext(r.Context()), cell.SlotID, body.Reason)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": cell})
}

// POST /api/schedule/slots/:slotid/revoke  (admin)
func RevokeSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := opCtx()
	defer cancel()

	cell, err := Revoke(ctx, ps.ByName("slotid"))
	if err != nil {
		writeErr(w, err)
		return
	}

	mq.Emit("slot-revoked", middleware.UserIDFromContext(r.Context()), cell.SlotID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": cell})
}

// GET /api/schedule/slots[?day=N][?status=S]  (admin)
func GetSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := opCtx()
	defer cancel()

	var err error
	var cells any
	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		day, convErr := strconv.Atoi(dayStr)
		if convErr != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "day must be an integer")
			return
		}
		cells, err = ListForDay(ctx, day)
	} else if status := r.URL.Query().Get("status"); status != "" {
		cells, err = ListForStatus(ctx, status)
	} else {
		cells, err = ListForAdmin(ctx)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slots": cells})
}

// GET /api/schedule/availability?from=YYYY-MM-DD&to=YYYY-MM-DD
func GetAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	now := time.Now()
	from := now
	to := now.AddDate(0, 0, 30)

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		to = t
	}
	if to.Before(from) {
		utils.RespondWithError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	avail, err := ListAssignedForPatients(ctx, from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"availability": avail})
}

// POST /api/schedule/slots/:slotid/book  (patient)
func BookSlotDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Date   string `json:"date"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	// the resolver is pure calendar logic; past dates are rejected here
	if d, err := ParseDate(body.Date); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	} else if d.Before(truncateToDay(time.Now())) {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot book a past date")
		return
	}

	patientID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := opCtx()
	defer cancel()

	res, err := BookDate(ctx, ps.ByName("slotid"), body.Date, patientID, body.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}

	mq.Emit("date-booked", patientID, ps.ByName("slotid"), body.Date)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"reservation": res})
}

// POST /api/schedule/slots/:slotid/release  (doctor, staff, admin)
func ReleaseSlotDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Date    string `json:"date"`
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	cell, err := ReleaseDate(ctx, ps.ByName("slotid"), body.Date, body.Outcome)
	if err != nil {
		writeErr(w, err)
		return
	}

	mq.Emit("date-released", middleware.UserIDFromContext(r.Context()), ps.ByName("slotid"), body.Date+":"+body.Outcome)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": cell})
}

// GET /api/schedule/bands — the fixed band enumeration for pickers.
func GetBands(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	type bandInfo struct {
		Band  string `json:"band"`
		Start int    `json:"start"` // minutes since midnight
		End   int    `json:"end"`   // may exceed 1440 for the overnight band
	}
	var out []bandInfo
	for _, b := range Bands() {
		start, end, _ := BandWindow(b)
		out = append(out, bandInfo{Band: b, Start: start, End: end})
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bands": out})
}
