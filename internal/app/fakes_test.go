package app

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"hr_contract_notifier/internal/domain/contract"
	"hr_contract_notifier/internal/domain/recipient"
	idb "hr_contract_notifier/internal/infra/database"
)

// fakeContractRepo returns every stored contract from ListActiveEndingBetween
// so window filtering is left to the scanner.
type fakeContractRepo struct {
	contracts []*contract.Contract
	employees map[int64]*contract.Employee
	listErr   error
	getErr    error

	mu        sync.Mutex
	listCalls int
}

func (f *fakeContractRepo) GetByID(_ context.Context, id int64) (*contract.Contract, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, c := range f.contracts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, idb.ErrContractNotFound
}

func (f *fakeContractRepo) ListActiveEndingBetween(_ context.Context, _, _ time.Time) ([]*contract.Contract, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contracts, nil
}

func (f *fakeContractRepo) GetEmployee(_ context.Context, employeeID int64) (*contract.Employee, error) {
	if e, ok := f.employees[employeeID]; ok {
		return e, nil
	}
	return nil, idb.ErrEmployeeNotFound
}

type fakeRecipientRepo struct {
	recipients []*recipient.Recipient
	listErr    error
	createErr  error

	created []*recipient.Recipient
	deleted []int64
	toggled map[int64]bool
}

func (f *fakeRecipientRepo) Create(_ context.Context, r *recipient.Recipient) error {
	if f.createErr != nil {
		return f.createErr
	}
	r.ID = int64(len(f.recipients) + 1)
	f.recipients = append(f.recipients, r)
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRecipientRepo) GetByEmail(_ context.Context, email string) (*recipient.Recipient, error) {
	for _, r := range f.recipients {
		if r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, idb.ErrRecipientNotFound
}

func (f *fakeRecipientRepo) SetActive(_ context.Context, id int64, active bool) error {
	if f.toggled == nil {
		f.toggled = map[int64]bool{}
	}
	f.toggled[id] = active
	return nil
}

func (f *fakeRecipientRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecipientRepo) ListActive(_ context.Context) ([]*recipient.Recipient, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*recipient.Recipient
	for _, r := range f.recipients {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipientRepo) ListAll(_ context.Context) ([]*recipient.Recipient, error) {
	return f.recipients, f.listErr
}

type sentEmail struct {
	To, Subject, HTML, Text string
}

type fakeEmail struct {
	mu    sync.Mutex
	sent  []sentEmail
	err   error
	block bool // wait for ctx cancellation
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: htmlBody, Text: textBody})
	return nil
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeChat struct {
	mu     sync.Mutex
	texts  []string
	err    error
	panics bool
}

func (f *fakeChat) SendChat(_ context.Context, text string) error {
	if f.panics {
		panic("chat client exploded")
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeChat) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

func newTestLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test"), hook
}

func entriesAt(hook *test.Hook, level logrus.Level) []logrus.Entry {
	var out []logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			out = append(out, *e)
		}
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endingOn(id int64, end time.Time) *contract.Contract {
	return &contract.Contract{
		ID:         id,
		Number:     "HD-" + string(rune('A'+id-1)),
		EmployeeID: id,
		Status:     contract.StatusActive,
		StartDate:  day(2023, time.January, 1),
		EndDate:    sql.NullTime{Time: end, Valid: true},
		JobTitle:   "Engineer",
	}
}

func activeRecipient(id int64, email string, types recipient.NotificationType) *recipient.Recipient {
	return &recipient.Recipient{ID: id, Email: email, IsActive: true, NotificationTypes: types}
}
