package billing

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/schedule"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/user"
)

// Collection is the store collection holding payment tickets.
const Collection = "paymentTickets"

// Ticket statuses
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
)

var (
	ErrNotFound    = errors.New("payment ticket not found")
	ErrEmptyTicket = errors.New("no scheduled lessons in this period")
	ErrAlreadyPaid = errors.New("payment ticket is already paid")
)

type (
	// PaymentTicketDetail is one module+enrollment line of a ticket.
	PaymentTicketDetail struct {
		ModuleID     string  `json:"moduleId"`
		ModuleName   string  `json:"moduleName,omitempty"`
		EnrollmentID string  `json:"enrollmentId"`
		Minutes      int     `json:"minutes"`
		Hours        float64 `json:"hours"`
		PricePerHour float64 `json:"pricePerHour"`
		Amount       float64 `json:"amount"`
		Currency     string  `json:"currency"`
	}

	// PaymentTicket sums a teacher's scheduled lessons of one calendar month
	// into billable hours.
	PaymentTicket struct {
		ID         string                `json:"id"`
		TeacherID  string                `json:"teacherId"`
		Month      time.Month            `json:"month"`
		Year       int                   `json:"year"`
		Status     string                `json:"status"`
		Details    []PaymentTicketDetail `json:"details"`
		TotalHours float64               `json:"totalHours"`
		Total      float64               `json:"total"`
		Currency   string                `json:"currency"`
		CreatedAt  time.Time             `json:"createdAt"`
		UpdatedAt  time.Time             `json:"updatedAt"`
		PaidAt     time.Time             `json:"paidAt,omitempty"`
	}
)

func (t PaymentTicket) RecordID() string { return t.ID }

type Service struct {
	st       *store.Store
	notifier core.Notifier
	mail     core.EmailService
	cfg      core.BillingConfig
}

func NewService(st *store.Store, notifier core.Notifier, mailSvc core.EmailService, cfg core.BillingConfig) *Service {
	return &Service{st: st, notifier: notifier, mail: mailSvc, cfg: cfg}
}

// CalculateTicket prices the teacher's schedule entries of the given month.
// Entries are grouped by module+enrollment; each group's minutes convert to
// hours and are priced through the enrollment's module assignment, falling
// back to the configured default hourly rate. The ticket is not persisted.
func (svc *Service) CalculateTicket(teacherID string, month time.Month, year int) (PaymentTicket, error) {
	entries := store.Filter(svc.st, schedule.Collection, func(e schedule.Entry) bool {
		return e.TeacherID == teacherID && e.StartTime.Month() == month && e.StartTime.Year() == year
	})
	if len(entries) == 0 {
		return PaymentTicket{}, core.NewValidationError(ErrEmptyTicket)
	}

	type group struct {
		moduleID     string
		enrollmentID string
		minutes      int
	}
	var order []string
	groups := make(map[string]*group)
	for _, e := range entries {
		key := e.ModuleID + "_" + e.EnrollmentID
		grp, ok := groups[key]
		if !ok {
			grp = &group{moduleID: e.ModuleID, enrollmentID: e.EnrollmentID}
			groups[key] = grp
			order = append(order, key)
		}
		grp.minutes += e.Duration
	}

	now := core.NowFunc().UTC()
	ticket := PaymentTicket{
		ID:        core.NewID(),
		TeacherID: teacherID,
		Month:     month,
		Year:      year,
		Status:    StatusPending,
		Details:   make([]PaymentTicketDetail, 0, len(order)),
		Currency:  svc.cfg.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, key := range order {
		grp := groups[key]
		rate := svc.cfg.DefaultHourlyRate
		currency := svc.cfg.Currency
		if asg, ok := store.Find(svc.st, enrollment.AssignmentCollection, func(ma enrollment.ModuleAssignment) bool {
			return ma.ModuleID == grp.moduleID && ma.EnrollmentID == grp.enrollmentID
		}); ok {
			rate = asg.PricePerHour
			currency = asg.Currency
		}

		detail := PaymentTicketDetail{
			ModuleID:     grp.moduleID,
			EnrollmentID: grp.enrollmentID,
			Minutes:      grp.minutes,
			Hours:        float64(grp.minutes) / 60,
			PricePerHour: rate,
			Currency:     currency,
		}
		detail.Amount = detail.Hours * rate
		if mod, ok := store.Get[module.Module](svc.st, module.Collection, grp.moduleID); ok {
			detail.ModuleName = mod.Name
		}
		ticket.Details = append(ticket.Details, detail)
		ticket.TotalHours += detail.Hours
		ticket.Total += detail.Amount
	}
	return ticket, nil
}

// SaveTicket persists a calculated ticket.
func (svc *Service) SaveTicket(ticket PaymentTicket) (PaymentTicket, error) {
	if err := store.Add(svc.st, Collection, ticket); err != nil {
		return PaymentTicket{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Payment ticket for %s %d created.", ticket.Month, ticket.Year))
	return ticket, nil
}

func (svc *Service) GetByID(id string) (PaymentTicket, error) {
	if ticket, ok := store.Get[PaymentTicket](svc.st, Collection, id); ok {
		return ticket, nil
	}
	return PaymentTicket{}, ErrNotFound
}

func (svc *Service) ByTeacher(teacherID string) []PaymentTicket {
	return store.Filter(svc.st, Collection, func(t PaymentTicket) bool { return t.TeacherID == teacherID })
}

// MarkPaid settles a pending ticket.
func (svc *Service) MarkPaid(id string) (PaymentTicket, error) {
	ticket, ok := store.Get[PaymentTicket](svc.st, Collection, id)
	if !ok {
		return PaymentTicket{}, ErrNotFound
	}
	if ticket.Status == StatusPaid {
		return PaymentTicket{}, core.NewValidationError(ErrAlreadyPaid)
	}

	var updated PaymentTicket
	err := store.Update(svc.st, Collection, id, func(t PaymentTicket) PaymentTicket {
		t.Status = StatusPaid
		t.PaidAt = core.NowFunc().UTC()
		t.UpdatedAt = t.PaidAt
		updated = t
		return t
	})
	if err != nil {
		return PaymentTicket{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, "Payment ticket settled.")
	return updated, nil
}

// EmailTicket sends the ticket summary to the teacher's email address.
func (svc *Service) EmailTicket(id string) error {
	ticket, ok := store.Get[PaymentTicket](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	teacher, ok := store.Get[user.User](svc.st, user.Collection, ticket.TeacherID)
	if !ok || teacher.Email == "" {
		return user.ErrNotFound
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Payment ticket %s %d\n\n", ticket.Month, ticket.Year)
	for _, d := range ticket.Details {
		fmt.Fprintf(&body, "%s: %.2f h x %.2f %s = %.2f %s\n",
			d.ModuleName, d.Hours, d.PricePerHour, d.Currency, d.Amount, d.Currency)
	}
	fmt.Fprintf(&body, "\nTotal: %.2f %s (%s)\n", ticket.Total, ticket.Currency, ticket.Status)

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
		Subject: fmt.Sprintf("Payment ticket %s %d", ticket.Month, ticket.Year),
		BodyStr: body.String(),
	}
	return svc.mail.SendMessages(msg)
}
