package learning

import (
	"context"
	"errors"
	"fmt"
	"lms/models"
	"lms/models/course"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CertificateRequest identifies what a certificate is issued for
type CertificateRequest struct {
	UserID      uint                   `json:"user_id" validate:"required"`
	Type        course.CertificateType `json:"type" validate:"required,oneof=COURSE PATH"`
	ReferenceID uint                   `json:"reference_id" validate:"required"`
}

// CertificateStatus is what verification reports for an existing certificate
type CertificateStatus string

const (
	CertificateStatusValid   CertificateStatus = "VALID"
	CertificateStatusRevoked CertificateStatus = "REVOKED"
)

// CertificateView is a certificate with the names needed to render or verify it
type CertificateView struct {
	course.Certificate
	Status   CertificateStatus `json:"status"`
	Title    string            `json:"title"`
	UserName string            `json:"user_name"`
}

// GenerateCertificate returns the certificate for (user, reference), creating
// it on first call. Concurrent duplicate calls converge on one row.
func (s *Service) GenerateCertificate(ctx context.Context, req CertificateRequest) (*course.Certificate, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var cert *course.Certificate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cert, _, err = s.issueCertificate(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

// issueCertificate is the find-or-create used inside larger transactions.
// The bool reports whether this call created the row.
func (s *Service) issueCertificate(tx *gorm.DB, req CertificateRequest) (*course.Certificate, bool, error) {
	lookup := func() (*course.Certificate, error) {
		q := tx.Where("user_id = ?", req.UserID)
		if req.Type == course.CertificatePath {
			q = q.Where("path_id = ?", req.ReferenceID)
		} else {
			q = q.Where("course_id = ?", req.ReferenceID)
		}
		var existing course.Certificate
		if err := q.First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	existing, err := lookup()
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("load certificate: %w", err)
	}

	ref := req.ReferenceID
	cert := course.Certificate{
		UserID:            req.UserID,
		Type:              req.Type,
		CertificateNumber: uuid.NewString(),
		IsValid:           true,
		IssuedAt:          s.now(),
	}
	if req.Type == course.CertificatePath {
		cert.PathID = &ref
	} else {
		cert.CourseID = &ref
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create certificate: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return &cert, true, nil
	}

	// another request inserted the same pair first
	existing, err = lookup()
	if err != nil {
		return nil, false, fmt.Errorf("reload certificate: %w", err)
	}
	return existing, false, nil
}

// RevokeCertificate invalidates a certificate without deleting it
func (s *Service) RevokeCertificate(ctx context.Context, caller *Caller, certificateID uint) (*CertificateView, error) {
	if err := requireCapability(caller, models.CapRevokeCertificates); err != nil {
		return nil, err
	}

	var (
		view    *CertificateView
		effects []sideEffect
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cert course.Certificate
		if err := tx.First(&cert, certificateID).Error; err != nil {
			return notFound(err, "certificate")
		}
		if cert.IsValid {
			revokedAt := s.now()
			if err := tx.Model(&cert).Updates(map[string]any{"is_valid": false, "revoked_at": revokedAt}).Error; err != nil {
				return fmt.Errorf("revoke certificate: %w", err)
			}
			cert.IsValid = false
			cert.RevokedAt = &revokedAt
		}

		var err error
		view, err = describeCertificate(tx, cert)
		if err != nil {
			return err
		}
		effects = append(effects, s.notify(NotificationPayload{
			UserID:    cert.UserID,
			Type:      NotifyCertRevoked,
			Title:     "Certificate revoked",
			Message:   fmt.Sprintf("Your certificate for %s has been revoked.", view.Title),
			ActionURL: "/certificates/" + cert.CertificateNumber,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, effects)
	return view, nil
}

// VerifyCertificate looks a certificate up by its public number. Revoked
// certificates are returned with StatusRevoked; unknown numbers are ErrNotFound.
func (s *Service) VerifyCertificate(ctx context.Context, number string) (*CertificateView, error) {
	if _, err := uuid.Parse(number); err != nil {
		return nil, invalidField("certificate_number", "must be a valid certificate number")
	}
	db := s.db.WithContext(ctx)
	var cert course.Certificate
	if err := db.Where("certificate_number = ?", number).First(&cert).Error; err != nil {
		return nil, notFound(err, "certificate")
	}
	return describeCertificate(db, cert)
}

// GetCertificate returns one of the caller's own certificates
func (s *Service) GetCertificate(ctx context.Context, caller *Caller, certificateID uint) (*CertificateView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var cert course.Certificate
	if err := db.Where("id = ? AND user_id = ?", certificateID, caller.UserID).First(&cert).Error; err != nil {
		return nil, notFound(err, "certificate")
	}
	return describeCertificate(db, cert)
}

// ListCertificates returns the caller's certificates, newest first
func (s *Service) ListCertificates(ctx context.Context, caller *Caller) ([]CertificateView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var certs []course.Certificate
	if err := db.Where("user_id = ?", caller.UserID).Order("issued_at desc").Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	views := make([]CertificateView, 0, len(certs))
	for _, cert := range certs {
		view, err := describeCertificate(db, cert)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func describeCertificate(db *gorm.DB, cert course.Certificate) (*CertificateView, error) {
	view := &CertificateView{Certificate: cert, Status: CertificateStatusValid}
	if !cert.IsValid {
		view.Status = CertificateStatusRevoked
	}

	var user models.User
	if err := db.Unscoped().Select("id", "name").First(&user, cert.UserID).Error; err == nil {
		view.UserName = user.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load certificate holder: %w", err)
	}

	var err error
	switch {
	case cert.CourseID != nil:
		var c course.Course
		err = db.Unscoped().Select("id", "title").First(&c, *cert.CourseID).Error
		view.Title = c.Title
	case cert.PathID != nil:
		var p course.LearningPath
		err = db.Unscoped().Select("id", "title").First(&p, *cert.PathID).Error
		view.Title = p.Title
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load certificate subject: %w", err)
	}
	return view, nil
}

func certificateEmail(title string, cert *course.Certificate, verifyURL string) string {
	return fmt.Sprintf(`
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<div class="info-box">
			<strong>Certificate number:</strong> %s<br>
			<strong>Issued:</strong> %s
		</div>
		<a href="%s" class="btn">Verify Certificate</a>
	`, title, cert.CertificateNumber, cert.IssuedAt.Format(time.DateOnly), verifyURL)
}
