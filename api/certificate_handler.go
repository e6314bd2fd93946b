package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const certificateFolder = "certificates"

type certificateHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      certificateStore
	media     *media.Store
	cache     responseCache
}

func newCertificateHandler(repo certificateStore, mediaStore *media.Store, cache responseCache, notifier notify.Notifier) certificateHandler {
	logger := log.With().Str("handlerName", "certificateHandler").Logger()

	return certificateHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		repo:      repo,
		media:     mediaStore,
		cache:     cache,
	}
}

type certificateInput struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description"`
	Date        string `form:"date" validate:"required"`
	Link        string `form:"link" validate:"omitempty,url"`
	Status      string `form:"status"`
}

func parseCertificateStatus(raw string) (models.Status, error) {
	status, ok := models.ParseStatus(raw, models.CertificateStatuses)
	if !ok {
		return "", errs.NewInvalidStatusError(raw, models.StatusNames(models.CertificateStatuses))
	}
	return status, nil
}

func (h certificateHandler) getCertificates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Has("id") {
			id, err := queryID(r, "id")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			certificate, err := h.repo.FindByID(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "certificate", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, certificate, "Certificate retrieved")
			return
		}

		var status models.Status
		if raw := q.Get("status"); raw != "" {
			s, err := parseCertificateStatus(raw)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			status = s
		}

		certificates, err := h.repo.FindAll(r.Context(), status)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "certificates", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, certificates, "Certificates retrieved")
	}
}

func (h certificateHandler) createCertificate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		in := certificateInput{
			Name:        p.get("name"),
			Description: p.get("description"),
			Date:        p.get("date"),
			Link:        p.get("link"),
			Status:      p.get("status"),
		}
		if err := validateStruct(in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		date, err := parseDate("date", in.Date)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		status := models.DefaultStatus
		if in.Status != "" {
			if status, err = parseCertificateStatus(in.Status); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		photo, err := uploadPhoto(r.Context(), h.media, p, certificateFolder)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		certificate := &models.Certificate{
			Name:        in.Name,
			Description: in.Description,
			Date:        datatypes.Date(date),
			Link:        in.Link,
			Photo:       photo,
			Status:      status,
		}
		if err := h.repo.Add(r.Context(), certificate); err != nil {
			h.media.Destroy(r.Context(), photoURL(photo))
			h.responder.WriteError(w, errs.NewDatabaseError("create", "certificate", err))
			return
		}

		h.cache.invalidate(r.Context(), tagCertificates)
		h.responder.WriteData(w, http.StatusCreated, certificate, "Certificate created")
	}
}

func (h certificateHandler) updateCertificate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		name, description, link := p.optional("name"), p.optional("description"), p.optional("link")
		photo := newPhotoUpdate(h.media, p)

		if name != nil && *name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if link != nil && *link != "" {
			if err := validate.Var(*link, "url"); err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("link", "must be a valid URL"))
				return
			}
		}
		var date *datatypes.Date
		if raw := p.optional("date"); raw != nil {
			t, err := parseDate("date", *raw)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			d := datatypes.Date(t)
			date = &d
		}
		var status *models.Status
		if raw := p.optional("status"); raw != nil && *raw != "" {
			s, err := parseCertificateStatus(*raw)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			status = &s
		}
		if name == nil && description == nil && link == nil && date == nil && status == nil && !photo.requested() {
			h.responder.WriteError(w, errs.NewNothingToUpdateError())
			return
		}

		if _, err := h.repo.FindByID(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "certificate", err))
			return
		}
		if err := photo.stage(r.Context(), certificateFolder); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.repo.Update(r.Context(), id, func(row *models.Certificate) error {
			changed := assign(&row.Name, name)
			changed = assign(&row.Description, description) || changed
			changed = assign(&row.Link, link) || changed
			if date != nil && !sameDate(row.Date, *date) {
				row.Date = *date
				changed = true
			}
			if status != nil && row.Status != *status {
				row.Status = *status
				changed = true
			}
			changed = photo.apply(&row.Photo) || changed
			if !changed {
				return errs.NewNothingToUpdateError()
			}
			return nil
		})
		photo.finish(r.Context(), err == nil)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "certificate", err))
			return
		}

		h.cache.invalidate(r.Context(), tagCertificates)
		h.responder.WriteData(w, http.StatusOK, updated, "Certificate updated")
	}
}

func (h certificateHandler) patchCertificateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id", "statuschange")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		raw, err := decodeStatus(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		status, err := parseCertificateStatus(raw)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		certificate, err := h.repo.UpdateStatus(r.Context(), id, status)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update status", "certificate", err))
			return
		}

		h.cache.invalidate(r.Context(), tagCertificates)
		h.responder.WriteData(w, http.StatusOK, models.CertificateStatusView{
			ID:     certificate.ID,
			Name:   certificate.Name,
			Status: certificate.Status,
		}, "Certificate status updated")
	}
}

func (h certificateHandler) deleteCertificate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		certificate, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "certificate", err))
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "certificate", err))
			return
		}
		h.media.Destroy(r.Context(), photoURL(certificate.Photo))

		h.cache.invalidate(r.Context(), tagCertificates)
		h.responder.WriteData(w, http.StatusOK, deletedResponse{ID: id}, "Certificate deleted")
	}
}

func sameDate(a, b datatypes.Date) bool {
	ay, am, ad := time.Time(a).Date()
	by, bm, bd := time.Time(b).Date()
	return ay == by && am == bm && ad == bd
}
