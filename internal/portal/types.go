package portal

// Storage keys, one per persisted collection.
const (
	KeyStudents      = "portal:students"
	KeyAnnouncements = "portal:announcements"
	KeyGalleryPhotos = "portal:gallery:photos"
	KeyGalleryVideos = "portal:gallery:videos"
	KeyAbout         = "portal:about"
	KeyStaff         = "portal:staff"
	KeyTransport     = "portal:transport"
	KeyHomework      = "portal:homework"
	KeyTimetable     = "portal:timetable"
	KeyLanguage      = "portal:language"
)

// AttendanceStatus is a day's attendance marking.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Valid reports whether s is a known attendance status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// AttendanceRecord marks one student's status for one date. A student
// holds at most one record per date.
type AttendanceRecord struct {
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// FeeStatus is a fee's position in its lifecycle.
type FeeStatus string

const (
	FeePending  FeeStatus = "pending"
	FeeApproved FeeStatus = "approved"
	FeeOverdue  FeeStatus = "overdue"
	FeePaid     FeeStatus = "paid"
)

// FeeRecord is a single charge against a student. PaidDate is set if
// and only if Status is paid.
type FeeRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	DueDate     string    `json:"dueDate"`
	Status      FeeStatus `json:"status"`
	PaidDate    string    `json:"paidDate,omitempty"`
	Description string    `json:"description"`
}

// BehavioralNote is a dated free-text note about a student.
type BehavioralNote struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Note    string `json:"note"`
	Teacher string `json:"teacher"`
}

// Student is the portal's central record, owning its attendance, fee
// and note histories.
type Student struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Class           string             `json:"class"`
	RollNumber      string             `json:"rollNumber"`
	Contact         string             `json:"contact"`
	Photo           string             `json:"photo,omitempty"`
	Attendance      []AttendanceRecord `json:"attendance"`
	Fees            []FeeRecord        `json:"fees"`
	BehavioralNotes []BehavioralNote   `json:"behavioralNotes"`
}

// Announcement is immutable once created; admins add and delete only.
type Announcement struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// GalleryKind selects the photo or video sub-collection.
type GalleryKind string

const (
	GalleryPhoto GalleryKind = "photo"
	GalleryVideo GalleryKind = "video"
)

// GalleryItem is one piece of school media.
type GalleryItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ImageHint   string `json:"imageHint,omitempty"`
}

// StaffMember is a teacher or other staff record.
type StaffMember struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Subject       string `json:"subject,omitempty"`
	ClassAssigned string `json:"classAssigned,omitempty"`
	Contact       string `json:"contact"`
	Photo         string `json:"photo,omitempty"`
}

// TransportStop is one stop on a bus route.
type TransportStop struct {
	Stop       string `json:"stop"`
	PickupTime string `json:"pickupTime"`
	DropTime   string `json:"dropTime"`
}

// BusRoute describes one school bus and its route.
type BusRoute struct {
	ID        string          `json:"id"`
	BusNumber string          `json:"busNumber"`
	Route     string          `json:"route"`
	Driver    Driver          `json:"driver"`
	Stops     []TransportStop `json:"stops"`
}

// Driver identifies the person behind the wheel.
type Driver struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// Homework is one assignment on the academics board.
type Homework struct {
	ID           string `json:"id"`
	Subject      string `json:"subject"`
	Title        string `json:"title"`
	AssignedDate string `json:"assignedDate"`
	DueDate      string `json:"dueDate"`
	Description  string `json:"description"`
	Teacher      string `json:"teacher"`
}

// Period is one slot in a day's timetable.
type Period struct {
	Time    string `json:"time"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
}

// TimetableEntry is one day's period grid.
type TimetableEntry struct {
	Day     string   `json:"day"`
	Periods []Period `json:"periods"`
}
