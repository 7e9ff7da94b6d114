package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/catalog"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/application"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/mailer"
)

// FeedPublisher pushes application lifecycle events to live subscribers.
// A nil publisher disables the feed.
type FeedPublisher interface {
	Publish(ctx context.Context, event string, payload any)
}

// SubmitInput carries the raw intake form. Validation happens here, not in
// the handler, so the compat endpoint and the JSON API share one rulebook.
type SubmitInput struct {
	FullName       string
	Email          string
	Phone          string
	Category       string
	Subcategory    string
	Institution    string
	Course         string
	YearOfStudy    string
	Availability   string
	Duration       string
	Weeks          string
	CoverLetter    string
	Consent        bool
	CVURL          string
	CoverLetterURL string
}

type ApplicationService struct {
	applications application.Repository
	mail         mailer.Client
	dispatcher   Dispatcher
	feed         FeedPublisher
	logger       Logger
	adminInbox   string
}

func NewApplicationService(applications application.Repository, mail mailer.Client, dispatcher Dispatcher, feed FeedPublisher, logger Logger, adminInbox string) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		mail:         mail,
		dispatcher:   dispatcher,
		feed:         feed,
		logger:       logger,
		adminInbox:   adminInbox,
	}
}

// Submit validates the intake form, stores the application in the initial
// status and notifies the admin inbox in the background. The violation list
// keeps form order so the consolidated error block reads top to bottom.
func (s *ApplicationService) Submit(ctx context.Context, in SubmitInput) (*application.Application, error) {
	var violations []common.FieldViolation
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			violations = append(violations, common.FieldViolation{Field: field, Message: field + " is required"})
		}
	}
	require("fullName", in.FullName)
	require("email", in.Email)
	require("phone", in.Phone)
	require("category", in.Category)
	if strings.TrimSpace(in.Category) != "" && catalog.HasSubcategories(in.Category) {
		require("subcategory", in.Subcategory)
	}
	require("institution", in.Institution)
	require("course", in.Course)
	require("yearOfStudy", in.YearOfStudy)
	require("availability", in.Availability)
	require("duration", in.Duration)
	if strings.TrimSpace(in.Duration) == "Flexible" {
		require("weeks", in.Weeks)
	}
	require("coverLetter", in.CoverLetter)
	if !in.Consent {
		violations = append(violations, common.FieldViolation{Field: "consent", Message: "consent is required"})
	}
	if len(violations) > 0 {
		return nil, common.NewValidationError(common.MissingFieldsMessage(violations), violations)
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); !emailPattern.MatchString(email) {
		return nil, common.NewValidationError("invalid email address", []common.FieldViolation{{Field: "email", Message: "invalid email address"}})
	}

	duration := strings.TrimSpace(in.Duration)
	if duration == "Flexible" {
		duration = fmt.Sprintf("Flexible (%s weeks)", strings.TrimSpace(in.Weeks))
	}

	app := application.Application{
		ID:             common.NewUUID(),
		FullName:       strings.TrimSpace(in.FullName),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          strings.TrimSpace(in.Phone),
		Category:       strings.TrimSpace(in.Category),
		Subcategory:    strings.TrimSpace(in.Subcategory),
		Institution:    strings.TrimSpace(in.Institution),
		Course:         strings.TrimSpace(in.Course),
		YearOfStudy:    strings.TrimSpace(in.YearOfStudy),
		Availability:   strings.TrimSpace(in.Availability),
		Duration:       duration,
		CoverLetter:    strings.TrimSpace(in.CoverLetter),
		CVURL:          strings.TrimSpace(in.CVURL),
		CoverLetterURL: strings.TrimSpace(in.CoverLetterURL),
		Status:         application.StatusApplied,
		SubmittedAt:    time.Now().UTC(),
	}
	created, err := s.applications.Create(ctx, app)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("application submitted id=%s category=%s", created.ID, created.Category))

	s.notifyAdmin(*created)
	s.publish(ctx, "application.submitted", created)
	return created, nil
}

// SetStatus moves an application to any known status. The admin status is a
// flat enum, not a state machine, so approved → applied is as legal as
// applied → review.
func (s *ApplicationService) SetStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	if !application.KnownStatus(status) {
		return nil, common.NewError(common.CodeValidation, fmt.Sprintf("unknown status %q", status), nil)
	}
	if _, err := s.applications.GetByID(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.applications.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("application status set id=%s status=%s", id, status))
	s.publish(ctx, "application.status", updated)
	return updated, nil
}

// AssignCompany records the placement and forces the review status in the
// same write, whatever the current status was.
func (s *ApplicationService) AssignCompany(ctx context.Context, id common.UUID, companyName string) (*application.Application, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, common.NewError(common.CodeValidation, "company name is required", nil)
	}
	if _, err := s.applications.GetByID(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.applications.AssignCompany(ctx, id, companyName, application.StatusReview)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("application assigned id=%s company=%q", id, companyName))
	s.publish(ctx, "application.assigned", updated)
	return updated, nil
}

// RecordCompanyDecision sets the assigned company's verdict. The decision
// axis is terminal: once set it never changes, unlike the admin status.
func (s *ApplicationService) RecordCompanyDecision(ctx context.Context, id common.UUID, actorCompany string, decision application.Decision, feedback string) (*application.Application, error) {
	if decision != application.DecisionApproved && decision != application.DecisionRejected {
		return nil, common.NewError(common.CodeValidation, fmt.Sprintf("unknown decision %q", decision), nil)
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.AssignedCompany == "" {
		return nil, common.NewError(common.CodeNotAssigned, "application has no assigned company", nil)
	}
	if app.AssignedCompany != actorCompany {
		return nil, common.NewError(common.CodeForbidden, "application is assigned to another company", nil)
	}
	if app.CompanyDecision != "" {
		return nil, common.NewError(common.CodeConflict, "decision already recorded", nil)
	}
	updated, err := s.applications.SetCompanyDecision(ctx, id, decision, strings.TrimSpace(feedback))
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("company decision recorded id=%s decision=%s", id, decision))
	s.publish(ctx, "application.decision", updated)
	return updated, nil
}

// List returns every application, newest first.
func (s *ApplicationService) List(ctx context.Context) ([]application.Application, error) {
	return s.applications.List(ctx)
}

// ListMine returns the applications submitted under the given email.
func (s *ApplicationService) ListMine(ctx context.Context, email string) ([]application.Application, error) {
	return s.applications.ListByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ListAssigned returns the queue assigned to the given company name.
func (s *ApplicationService) ListAssigned(ctx context.Context, companyName string) ([]application.Application, error) {
	return s.applications.ListByAssignedCompany(ctx, companyName)
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.applications.GetByID(ctx, id)
}

// notifyAdmin sends the intake email in the background. Delivery failures
// are logged and never surface to the applicant.
func (s *ApplicationService) notifyAdmin(app application.Application) {
	if s.mail == nil || s.dispatcher == nil || s.adminInbox == "" {
		return
	}
	s.dispatcher.Dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		subject := "New Internship Application - " + app.FullName
		body := mailer.NewApplicationHTML(mailer.ApplicationEmail{
			ApplicationID: string(app.ID),
			FullName:      app.FullName,
			Email:         app.Email,
			Phone:         app.Phone,
			Category:      app.Category,
			Subcategory:   app.Subcategory,
			Institution:   app.Institution,
			Course:        app.Course,
			YearOfStudy:   app.YearOfStudy,
			Availability:  app.Availability,
			Duration:      app.Duration,
			CoverLetter:   app.CoverLetter,
		}, app.SubmittedAt)
		if err := s.mail.Send(ctx, s.adminInbox, subject, body); err != nil {
			s.logError(fmt.Sprintf("admin notification failed id=%s: %v", app.ID, err))
		}
	})
}

func (s *ApplicationService) publish(ctx context.Context, event string, payload any) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, event, payload)
}

func (s *ApplicationService) logInfo(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg)
}

func (s *ApplicationService) logError(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Error(msg)
}
