package portal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// NewStudent carries the admin-entered profile for AddStudent. The id
// and the child histories are assigned by the service.
type NewStudent struct {
	Name       string `json:"name"`
	Class      string `json:"class"`
	RollNumber string `json:"rollNumber"`
	Contact    string `json:"contact"`
	Photo      string `json:"photo,omitempty"`
}

// NewFee carries the admin-entered fee data for AddFee. Status is
// always forced to pending regardless of input.
type NewFee struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate"`
	Description string  `json:"description"`
}

// Students manages the student collection and its owned attendance,
// fee and note histories.
type Students struct {
	store *kvstore.Store[[]Student]
	queue queue.Queue
}

// NewStudents creates the service over the shared backend and bus.
func NewStudents(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Students {
	return &Students{
		store: kvstore.New(KeyStudents, []Student{}, backend, bus),
		queue: q,
	}
}

// List returns the current collection, newest first.
func (s *Students) List() []Student { return s.store.Get() }

// Get returns one student by id.
func (s *Students) Get(id string) (Student, error) {
	for _, st := range s.store.Get() {
		if st.ID == id {
			return st, nil
		}
	}
	return Student{}, ErrNotFound
}

// Current resolves the student bound to a parent session. Admin
// sessions and unbound parents have no current student.
func (s *Students) Current(sess Session) (Student, bool) {
	if sess.Role != RoleParent || sess.StudentID == "" {
		return Student{}, false
	}
	st, err := s.Get(sess.StudentID)
	return st, err == nil
}

func (s *Students) mutate(ctx context.Context, fn func([]Student) ([]Student, error)) error {
	if _, err := s.store.Update(ctx, fn); err != nil {
		return err
	}
	enqueueReconcile(ctx, s.queue, KeyStudents)
	return nil
}

// Add creates a student with a fresh id and empty histories, prepended
// to the collection. Admin only.
func (s *Students) Add(ctx context.Context, sess Session, profile NewStudent) (Student, error) {
	if !sess.IsAdmin() {
		return Student{}, &AuthorizationError{Verb: "add student", Role: sess.Role}
	}
	var fields []FieldError
	if profile.Name == "" {
		fields = append(fields, FieldError{Field: "name", Reason: "required"})
	}
	if profile.Class == "" {
		fields = append(fields, FieldError{Field: "class", Reason: "required"})
	}
	if profile.RollNumber == "" {
		fields = append(fields, FieldError{Field: "rollNumber", Reason: "required"})
	}
	if len(fields) > 0 {
		return Student{}, &ValidationError{Fields: fields}
	}

	st := Student{
		ID:              uuid.NewString(),
		Name:            profile.Name,
		Class:           profile.Class,
		RollNumber:      profile.RollNumber,
		Contact:         profile.Contact,
		Photo:           profile.Photo,
		Attendance:      []AttendanceRecord{},
		Fees:            []FeeRecord{},
		BehavioralNotes: []BehavioralNote{},
	}
	err := s.mutate(ctx, func(cur []Student) ([]Student, error) {
		next := make([]Student, 0, len(cur)+1)
		next = append(next, st)
		next = append(next, cur...)
		return next, nil
	})
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

// Update replaces the matching-id student wholesale. Admin only.
func (s *Students) Update(ctx context.Context, sess Session, st Student) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "update student", Role: sess.Role}
	}
	if st.ID == "" {
		return &ValidationError{Fields: []FieldError{{Field: "id", Reason: "required"}}}
	}
	return s.mutate(ctx, func(cur []Student) ([]Student, error) {
		next := make([]Student, len(cur))
		found := false
		for i, existing := range cur {
			if existing.ID == st.ID {
				next[i] = st
				found = true
			} else {
				next[i] = existing
			}
		}
		if !found {
			return nil, ErrNotFound
		}
		return next, nil
	})
}

// Delete removes the matching-id student. Admin only.
func (s *Students) Delete(ctx context.Context, sess Session, id string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "delete student", Role: sess.Role}
	}
	return s.mutate(ctx, func(cur []Student) ([]Student, error) {
		next := make([]Student, 0, len(cur))
		for _, existing := range cur {
			if existing.ID != id {
				next = append(next, existing)
			}
		}
		if len(next) == len(cur) {
			return nil, ErrNotFound
		}
		return next, nil
	})
}

// SetAttendance upserts the student's record for date: replaced when
// the date already exists, appended otherwise. Admin only.
func (s *Students) SetAttendance(ctx context.Context, sess Session, studentID string, date time.Time, status AttendanceStatus) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "set attendance", Role: sess.Role}
	}
	if !status.Valid() {
		return &ValidationError{Fields: []FieldError{{Field: "status", Reason: "must be present, absent or late"}}}
	}
	day := date.UTC().Format(dateLayout)
	return s.withStudent(ctx, studentID, func(st Student) (Student, error) {
		next := make([]AttendanceRecord, len(st.Attendance))
		copy(next, st.Attendance)
		replaced := false
		for i, rec := range next {
			if rec.Date == day {
				next[i] = AttendanceRecord{Date: day, Status: status}
				replaced = true
				break
			}
		}
		if !replaced {
			next = append(next, AttendanceRecord{Date: day, Status: status})
		}
		st.Attendance = next
		return st, nil
	})
}

// AddFee appends a new pending fee to the student. Admin only.
func (s *Students) AddFee(ctx context.Context, sess Session, studentID string, data NewFee) (FeeRecord, error) {
	if !sess.IsAdmin() {
		return FeeRecord{}, &AuthorizationError{Verb: "add fee", Role: sess.Role}
	}
	var fields []FieldError
	if data.Type == "" {
		fields = append(fields, FieldError{Field: "type", Reason: "required"})
	}
	if data.Amount <= 0 {
		fields = append(fields, FieldError{Field: "amount", Reason: "must be positive"})
	}
	if _, err := time.Parse(dateLayout, data.DueDate); err != nil {
		fields = append(fields, FieldError{Field: "dueDate", Reason: "must be YYYY-MM-DD"})
	}
	if len(fields) > 0 {
		return FeeRecord{}, &ValidationError{Fields: fields}
	}

	fee := FeeRecord{
		ID:          uuid.NewString(),
		Type:        data.Type,
		Amount:      data.Amount,
		DueDate:     data.DueDate,
		Status:      FeePending,
		Description: data.Description,
	}
	err := s.withStudent(ctx, studentID, func(st Student) (Student, error) {
		next := make([]FeeRecord, 0, len(st.Fees)+1)
		next = append(next, fee)
		next = append(next, st.Fees...)
		st.Fees = next
		return st, nil
	})
	if err != nil {
		return FeeRecord{}, err
	}
	return fee, nil
}

// ApproveFee moves a pending fee to approved. Any other starting state
// is rejected so the lifecycle never skips or rewinds. Admin only.
func (s *Students) ApproveFee(ctx context.Context, sess Session, studentID, feeID string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "approve fee", Role: sess.Role}
	}
	return s.withFee(ctx, studentID, feeID, func(fee FeeRecord) (FeeRecord, error) {
		if fee.Status != FeePending {
			return fee, &FeeStateError{FeeID: feeID, From: fee.Status, To: FeeApproved}
		}
		fee.Status = FeeApproved
		return fee, nil
	})
}

// PayFee settles an approved or overdue fee, stamping today's date.
// Paying a pending fee or re-paying a paid one is rejected; paid is
// terminal. A parent may pay only for the student bound to the session.
func (s *Students) PayFee(ctx context.Context, sess Session, studentID, feeID string) error {
	if !sess.IsAdmin() && sess.StudentID != studentID {
		return &AuthorizationError{Verb: "pay fee", Role: sess.Role}
	}
	return s.withFee(ctx, studentID, feeID, func(fee FeeRecord) (FeeRecord, error) {
		if fee.Status != FeeApproved && fee.Status != FeeOverdue {
			return fee, &FeeStateError{FeeID: feeID, From: fee.Status, To: FeePaid}
		}
		fee.Status = FeePaid
		fee.PaidDate = today()
		return fee, nil
	})
}

// AddBehavioralNote prepends a dated note to the student. Admin only.
func (s *Students) AddBehavioralNote(ctx context.Context, sess Session, studentID, note, teacher string) (BehavioralNote, error) {
	if !sess.IsAdmin() {
		return BehavioralNote{}, &AuthorizationError{Verb: "add behavioral note", Role: sess.Role}
	}
	if note == "" {
		return BehavioralNote{}, &ValidationError{Fields: []FieldError{{Field: "note", Reason: "required"}}}
	}
	bn := BehavioralNote{
		ID:      uuid.NewString(),
		Date:    today(),
		Note:    note,
		Teacher: teacher,
	}
	err := s.withStudent(ctx, studentID, func(st Student) (Student, error) {
		next := make([]BehavioralNote, 0, len(st.BehavioralNotes)+1)
		next = append(next, bn)
		next = append(next, st.BehavioralNotes...)
		st.BehavioralNotes = next
		return st, nil
	})
	if err != nil {
		return BehavioralNote{}, err
	}
	return bn, nil
}

// MarkOverdue flips every unpaid fee whose due date has passed to
// overdue and returns how many changed. Paid fees are never touched.
// Run by the reconciler on a ticker rather than a user action.
func (s *Students) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	day := now.UTC().Format(dateLayout)
	changed := 0
	err := s.mutate(ctx, func(cur []Student) ([]Student, error) {
		changed = 0
		next := make([]Student, len(cur))
		for i, st := range cur {
			fees := make([]FeeRecord, len(st.Fees))
			copy(fees, st.Fees)
			for j, fee := range fees {
				if (fee.Status == FeePending || fee.Status == FeeApproved) && fee.DueDate < day {
					fees[j].Status = FeeOverdue
					changed++
				}
			}
			st.Fees = fees
			next[i] = st
		}
		if changed == 0 {
			return nil, errNoChange
		}
		return next, nil
	})
	if err == errNoChange {
		return 0, nil
	}
	return changed, err
}

// withStudent rewrites exactly the targeted student by id.
func (s *Students) withStudent(ctx context.Context, studentID string, fn func(Student) (Student, error)) error {
	return s.mutate(ctx, func(cur []Student) ([]Student, error) {
		next := make([]Student, len(cur))
		found := false
		for i, st := range cur {
			if st.ID == studentID {
				updated, err := fn(st)
				if err != nil {
					return nil, err
				}
				next[i] = updated
				found = true
			} else {
				next[i] = st
			}
		}
		if !found {
			return nil, ErrNotFound
		}
		return next, nil
	})
}

// withFee rewrites exactly the targeted fee within a student.
func (s *Students) withFee(ctx context.Context, studentID, feeID string, fn func(FeeRecord) (FeeRecord, error)) error {
	return s.withStudent(ctx, studentID, func(st Student) (Student, error) {
		fees := make([]FeeRecord, len(st.Fees))
		copy(fees, st.Fees)
		found := false
		for i, fee := range fees {
			if fee.ID == feeID {
				updated, err := fn(fee)
				if err != nil {
					return st, err
				}
				fees[i] = updated
				found = true
				break
			}
		}
		if !found {
			return st, ErrNotFound
		}
		st.Fees = fees
		return st, nil
	})
}
